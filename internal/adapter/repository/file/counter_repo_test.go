package file_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/vestflow/internal/adapter/repository/file"
)

func TestCounterStoreSequence(t *testing.T) {
	t.Parallel()

	store := file.NewCounterStore(filepath.Join(t.TempDir(), "id_counter.json"))

	for want := uint64(1); want <= 5; want++ {
		got, err := store.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCounterStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "id_counter.json")

	store := file.NewCounterStore(path)
	for i := 0; i < 3; i++ {
		_, err := store.Next(context.Background())
		require.NoError(t, err)
	}

	reopened := file.NewCounterStore(path)
	got, err := reopened.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got)
}

func TestCounterStoreConcurrentIssuance(t *testing.T) {
	t.Parallel()

	store := file.NewCounterStore(filepath.Join(t.TempDir(), "id_counter.json"))

	const goroutines = 8
	values := make(chan uint64, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.Next(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[uint64]bool)
	for v := range values {
		assert.False(t, seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, goroutines)
}
