package usecase

import (
	"context"
)

// CounterStore is the durable home of the id counter. Next atomically
// increments the stored value and returns it; the store, not process
// memory, is the counter's source of truth. Implementations must be
// safe against concurrent pipeline runs.
type CounterStore interface {
	Next(ctx context.Context) (uint64, error)
}

// IDGenerator issues globally unique transaction identifiers.
type IDGenerator interface {
	NextID(ctx context.Context) string
}

// MetricsRecorder receives pipeline observations. The prometheus
// implementation lives in infrastructure/metrics.
type MetricsRecorder interface {
	StageProcessed(stage string, rowsIn, rowsOut, warnings int)
	RunCompleted(status string)
	IDIssued()
	LookupFailed(kind string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) StageProcessed(string, int, int, int) {}
func (NopMetrics) RunCompleted(string)                  {}
func (NopMetrics) IDIssued()                            {}
func (NopMetrics) LookupFailed(string)                  {}
