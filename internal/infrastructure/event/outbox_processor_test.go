package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

type memoryOutboxRepo struct {
	mu      sync.Mutex
	entries map[string]*shared.OutboxEntry
}

func newMemoryOutboxRepo() *memoryOutboxRepo {
	return &memoryOutboxRepo{entries: make(map[string]*shared.OutboxEntry)}
}

func (r *memoryOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		copied := *e
		r.entries[e.ID.String()] = &copied
	}
	return nil
}

func (r *memoryOutboxRepo) FindPending(_ context.Context, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending && len(out) < limit {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepo) FindRetryable(_ context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil && e.NextRetryAt.Before(before) && len(out) < limit {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepo) Update(_ context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries[entry.ID.String()] = &copied
	return nil
}

func (r *memoryOutboxRepo) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, e := range r.entries {
		if e.Status == shared.OutboxStatusSent && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryOutboxRepo) get(id string) *shared.OutboxEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

type recordingRelay struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (p *recordingRelay) PublishRaw(_ context.Context, topic, eventID string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, topic+":"+eventID)
	return nil
}

func TestOutboxProcessor_RelaysPendingEntries(t *testing.T) {
	repo := newMemoryOutboxRepo()
	relay := &recordingRelay{}
	processor := NewOutboxProcessor(repo, relay, DefaultOutboxProcessorConfig(), zap.NewNop())

	event := newTestEvent("team.created")
	entry := shared.NewOutboxEntry(event, []byte(`{"topic":"team.created"}`))
	require.NoError(t, repo.Save(context.Background(), entry))

	processor.ProcessOnce(context.Background())

	stored := repo.get(entry.ID.String())
	require.NotNil(t, stored)
	assert.Equal(t, shared.OutboxStatusSent, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Equal(t, []string{"team.created:" + event.EventID().String()}, relay.published)
}

func TestOutboxProcessor_FailedEntryScheduledForRetry(t *testing.T) {
	repo := newMemoryOutboxRepo()
	relay := &recordingRelay{err: errors.New("broker unavailable")}
	processor := NewOutboxProcessor(repo, relay, DefaultOutboxProcessorConfig(), zap.NewNop())

	entry := shared.NewOutboxEntry(newTestEvent("team.created"), []byte(`{}`))
	require.NoError(t, repo.Save(context.Background(), entry))

	processor.ProcessOnce(context.Background())

	stored := repo.get(entry.ID.String())
	require.NotNil(t, stored)
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.NotNil(t, stored.NextRetryAt)
	assert.Contains(t, stored.LastError, "broker unavailable")
}

func TestOutboxEntry_ExhaustedRetriesGoDead(t *testing.T) {
	entry := shared.NewOutboxEntry(newTestEvent("team.created"), []byte(`{}`))
	entry.MaxRetries = 2

	entry.MarkFailed("first")
	assert.Equal(t, shared.OutboxStatusFailed, entry.Status)
	assert.False(t, entry.IsDead())

	entry.MarkFailed("second")
	assert.True(t, entry.IsDead())
	assert.Equal(t, shared.OutboxStatusDead, entry.Status)
}
