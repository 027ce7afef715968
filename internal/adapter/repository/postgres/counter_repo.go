package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterStore keeps the id counter in a single-row table. The
// increment runs as one UPDATE ... RETURNING, so the row lock makes
// concurrent pipeline runs queue rather than share a value.
type CounterStore struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewCounterStore creates a counter store over pool.
func NewCounterStore(pool *pgxpool.Pool, retrier *Retrier) *CounterStore {
	return &CounterStore{pool: pool, retrier: retrier}
}

// Next atomically increments the stored counter and returns the new
// value.
func (s *CounterStore) Next(ctx context.Context) (uint64, error) {
	var value int64

	err := s.retrier.Retry(ctx, func() error {
		return s.pool.QueryRow(ctx,
			`UPDATE id_counter SET value = value + 1 WHERE id = 1 RETURNING value`,
		).Scan(&value)
	})
	if err != nil {
		return 0, fmt.Errorf("increment id counter: %w", err)
	}

	return uint64(value), nil
}
