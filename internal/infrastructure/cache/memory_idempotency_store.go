package cache

import (
	"context"
	"sync"
	"time"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// MemoryIdempotencyStore implements shared.IdempotencyStore in memory,
// for tests and single-node development.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

var _ shared.IdempotencyStore = (*MemoryIdempotencyStore)(nil)

// NewMemoryIdempotencyStore creates an empty in-memory idempotency store
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]time.Time)}
}

// MarkProcessed marks an event as processed. Returns true if the event was
// newly marked, false if it was already processed.
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.entries[eventID]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.entries[eventID] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed checks if an event has already been processed
func (s *MemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[eventID]
	return ok && time.Now().Before(expiry), nil
}

// Close clears the store
func (s *MemoryIdempotencyStore) Close() error {
	s.mu.Lock()
	s.entries = make(map[string]time.Time)
	s.mu.Unlock()
	return nil
}
