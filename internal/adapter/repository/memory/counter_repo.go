// Package memory provides a process-local counter store. Ids issued
// from it are unique within one process only; it exists for tests and
// for explicitly opting out of durability.
package memory

import (
	"context"
	"sync/atomic"
)

// CounterStore is an atomic in-memory counter.
type CounterStore struct {
	value atomic.Uint64
}

// NewCounterStore creates a store starting at zero.
func NewCounterStore() *CounterStore {
	return &CounterStore{}
}

// Next increments the counter and returns the new value.
func (s *CounterStore) Next(context.Context) (uint64, error) {
	return s.value.Add(1), nil
}
