package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Standard TTLs. Broad or volatile keys get short TTLs so that missed
// invalidations self-heal quickly; single-entity keys live longer.
const (
	DefaultTTL  = 30 * time.Minute
	SearchTTL   = 5 * time.Minute
	VolatileTTL = 60 * time.Second
)

// Store is a byte-oriented cache with explicit invalidation. A miss is not
// an error: Get returns found=false. Implementations must degrade
// gracefully; callers treat cache errors as misses.
type Store interface {
	// Get retrieves the value stored under key
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key with the given TTL
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Remove deletes the given keys; missing keys are not an error
	Remove(ctx context.Context, keys ...string) error

	// Close releases resources held by the store
	Close() error
}

// GetJSON retrieves and unmarshals a cached value into dest.
// Returns false on a miss or on a decode failure.
func GetJSON[T any](ctx context.Context, store Store, key string, dest *T) (bool, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A corrupt entry is treated as a miss; the caller will refill it.
		return false, nil
	}
	return true, nil
}

// SetJSON marshals value and stores it under key with the given TTL
func SetJSON(ctx context.Context, store Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(raw), ttl)
}
