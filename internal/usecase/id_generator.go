package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/vestflow/internal/domain"
)

// idPrefix is the fixed prefix of every issued transaction id.
const idPrefix = "VT"

// VTGenerator issues ids of the form VT{YYYYMMDDHHMMSS}{counter:06d}.
// The counter lives in the CounterStore; nothing is cached in memory
// while the store is healthy, so concurrent runs sharing a store never
// repeat a value. On the first store failure the generator switches to
// a memory-only counter seeded past the last stored value and keeps
// going: ids stay unique within the run but the cross-restart
// guarantee is forfeited until the store recovers. That trade-off is
// deliberate: an unwritable counter file must not abort a report run.
type VTGenerator struct {
	store   CounterStore
	logger  zerolog.Logger
	metrics MetricsRecorder
	clock   func() time.Time

	mu         sync.Mutex
	lastStored uint64
	memCounter uint64
	degraded   bool
}

// NewVTGenerator creates a generator backed by store.
func NewVTGenerator(store CounterStore, logger zerolog.Logger, metrics MetricsRecorder) *VTGenerator {
	return &VTGenerator{
		store:   store,
		logger:  logger,
		metrics: metrics,
		clock:   time.Now,
	}
}

// NextID returns the next unique id. It never fails; store errors
// degrade the generator as documented above.
func (g *VTGenerator) NextID(ctx context.Context) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var counter uint64
	if g.degraded {
		g.memCounter++
		counter = g.memCounter
	} else {
		value, err := g.store.Next(ctx)
		if err != nil {
			perr := &domain.PersistenceError{Err: err}
			g.logger.Warn().Err(perr).Msg("degrading id generator to in-memory counter")
			g.degraded = true
			g.memCounter = g.lastStored + 1
			counter = g.memCounter
		} else {
			g.lastStored = value
			counter = value
		}
	}

	g.metrics.IDIssued()

	return fmt.Sprintf("%s%s%06d", idPrefix, g.clock().Format("20060102150405"), counter)
}

// Degraded reports whether the generator has lost its durable store.
func (g *VTGenerator) Degraded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degraded
}
