package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskfabric/backend/internal/domain/shared"
)

const idempotencyKeyPrefix = "idempotency:event:"

// RedisIdempotencyStore implements shared.IdempotencyStore backed by Redis.
// SETNX gives atomic first-writer-wins semantics across service replicas.
type RedisIdempotencyStore struct {
	client *redis.Client
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore creates a Redis-backed idempotency store
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// MarkProcessed marks an event as processed. Returns true if the event was
// newly marked, false if another consumer already processed it.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	key := idempotencyKeyPrefix + eventID
	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}
	return ok, nil
}

// IsProcessed checks if an event has already been processed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	key := idempotencyKeyPrefix + eventID
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check event processed: %w", err)
	}
	return n > 0, nil
}

// Close is a no-op; the underlying client is shared and closed by its owner
func (s *RedisIdempotencyStore) Close() error {
	return nil
}
