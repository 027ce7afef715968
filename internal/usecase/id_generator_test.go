package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounterStore struct {
	value  uint64
	failAt int
	calls  int
}

func (s *stubCounterStore) Next(context.Context) (uint64, error) {
	s.calls++
	if s.failAt > 0 && s.calls >= s.failAt {
		return 0, errors.New("store unavailable")
	}
	s.value++
	return s.value, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 5, 9, 30, 0, 0, time.Local)
}

func TestVTGeneratorFormat(t *testing.T) {
	t.Parallel()

	gen := NewVTGenerator(&stubCounterStore{}, zerolog.Nop(), NopMetrics{})
	gen.clock = fixedClock

	id := gen.NextID(context.Background())
	assert.Equal(t, "VT20240105093000000001", id)
}

func TestVTGeneratorIssuesDistinctIDs(t *testing.T) {
	t.Parallel()

	store := &stubCounterStore{}
	gen := NewVTGenerator(store, zerolog.Nop(), NopMetrics{})
	gen.clock = fixedClock

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.NextID(context.Background())
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	// After N issuances the stored counter advanced by exactly N.
	assert.Equal(t, uint64(100), store.value)
	assert.False(t, gen.Degraded())
}

func TestVTGeneratorDegradesOnStoreFailure(t *testing.T) {
	t.Parallel()

	store := &stubCounterStore{failAt: 3}
	gen := NewVTGenerator(store, zerolog.Nop(), NopMetrics{})
	gen.clock = fixedClock

	first := gen.NextID(context.Background())
	second := gen.NextID(context.Background())
	third := gen.NextID(context.Background())
	fourth := gen.NextID(context.Background())

	assert.Equal(t, "VT20240105093000000001", first)
	assert.Equal(t, "VT20240105093000000002", second)
	// The memory counter is seeded past the last stored value.
	assert.Equal(t, "VT20240105093000000003", third)
	assert.Equal(t, "VT20240105093000000004", fourth)
	assert.True(t, gen.Degraded())

	// The store is not consulted again once degraded.
	assert.Equal(t, 3, store.calls)
}
