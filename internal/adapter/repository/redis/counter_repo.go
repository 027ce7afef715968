package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultCounterKey is the key the id counter lives under unless
// configured otherwise.
const DefaultCounterKey = "vestflow:id_counter"

// CounterStore keeps the id counter in a single Redis key. INCR is
// atomic, so concurrent pipeline runs never receive the same value.
type CounterStore struct {
	client *redis.Client
	key    string
}

// NewCounterStore creates a counter store over client. An empty key
// falls back to DefaultCounterKey.
func NewCounterStore(client *redis.Client, key string) *CounterStore {
	if key == "" {
		key = DefaultCounterKey
	}
	return &CounterStore{client: client, key: key}
}

// Next atomically increments the stored counter and returns the new
// value.
func (s *CounterStore) Next(ctx context.Context) (uint64, error) {
	value, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment id counter: %w", err)
	}

	return uint64(value), nil
}
