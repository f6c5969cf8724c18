package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, found, err := store.Get(ctx, "project:missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "project:abc", `{"name":"x"}`, DefaultTTL))

	val, found, err := store.Get(ctx, "project:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"name":"x"}`, val)

	require.NoError(t, store.Remove(ctx, "project:abc", "project:missing"))

	_, found, err = store.Get(ctx, "project:abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "team:short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Get(ctx, "team:short")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	type snapshot struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, store, "teams:all", snapshot{Name: "Platform", Count: 3}, SearchTTL))

	var got snapshot
	found, err := GetJSON(ctx, store, "teams:all", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot{Name: "Platform", Count: 3}, got)
}

func TestGetJSON_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "user:bad", "{not-json", DefaultTTL))

	var got map[string]string
	found, err := GetJSON(ctx, store, "user:bad", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeys_Grammar(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, "project:11111111-2222-3333-4444-555555555555", ProjectKey(id))
	assert.Equal(t, "projects:manager:11111111-2222-3333-4444-555555555555", ProjectsByManagerKey(id))
	assert.Equal(t, "projects:team:11111111-2222-3333-4444-555555555555", ProjectsByTeamKey(id))
	assert.Equal(t, "tasks:project:11111111-2222-3333-4444-555555555555", TasksByProjectKey(id))
	assert.Equal(t, "tasks:assignee:11111111-2222-3333-4444-555555555555", TasksByAssigneeKey(id))
	assert.Equal(t, "team:members:11111111-2222-3333-4444-555555555555", TeamMembersKey(id))
	assert.Equal(t, "teams:user:11111111-2222-3333-4444-555555555555", TeamsByUserKey(id))
	assert.Equal(t, "teams:all", TeamsAllKey())
	assert.Equal(t, "user:email:alice@example.com", UserByEmailKey("alice@example.com"))
}

func TestKeys_SearchAllToken(t *testing.T) {
	assert.Equal(t, "projects:search:name:all:status:all", ProjectSearchKey("", ""))
	assert.Equal(t, "projects:search:name:web:status:Planning", ProjectSearchKey("web", "Planning"))

	id := uuid.New().String()
	assert.Equal(t, "tasks:search:project:all:status:all:assignee:all", TaskSearchKey("", "", ""))
	assert.Equal(t, "tasks:search:project:"+id+":status:Done:assignee:all", TaskSearchKey(id, "Done", ""))

	assert.Equal(t, "users:role:all", UsersByRoleKey(""))
	assert.Equal(t, "users:role:ADMIN", UsersByRoleKey("ADMIN"))
}

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore()

	eventID := uuid.NewString()

	processed, err := store.IsProcessed(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, processed)

	first, err := store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.False(t, second, "duplicate mark must report already processed")

	processed, err = store.IsProcessed(ctx, eventID)
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestMemoryIdempotencyStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore()

	eventID := uuid.NewString()
	_, err := store.MarkProcessed(ctx, eventID, 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	first, err := store.MarkProcessed(ctx, eventID, time.Minute)
	require.NoError(t, err)
	assert.True(t, first, "expired marks must allow reprocessing")
}
