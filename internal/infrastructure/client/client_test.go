package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

func TestHTTPTeamLookup_Exists(t *testing.T) {
	teamID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/teams/internal/exists/"+teamID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`true`))
	}))
	defer server.Close()

	lookup := NewHTTPTeamLookup(server.URL+"/api/teams", time.Second, zap.NewNop())

	exists, err := lookup.Exists(context.Background(), teamID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHTTPTeamLookup_ExistsFalseIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`false`))
	}))
	defer server.Close()

	lookup := NewHTTPTeamLookup(server.URL, time.Second, zap.NewNop())

	exists, err := lookup.Exists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHTTPTeamLookup_TransportFailureIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	lookup := NewHTTPTeamLookup(server.URL, time.Second, zap.NewNop())

	_, err := lookup.Exists(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable,
		"a dead upstream must not be mistaken for a missing entity")
}

func TestHTTPTeamLookup_ServerErrorIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	lookup := NewHTTPTeamLookup(server.URL, time.Second, zap.NewNop())

	_, err := lookup.Exists(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
}

func TestHTTPTeamLookup_HasMember(t *testing.T) {
	teamID := uuid.New()
	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/"+teamID.String()+"/members/"+userID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`true`))
	}))
	defer server.Close()

	lookup := NewHTTPTeamLookup(server.URL, time.Second, zap.NewNop())

	isMember, err := lookup.HasMember(context.Background(), teamID, userID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestHTTPTeamLookup_TeamsForUser(t *testing.T) {
	userID := uuid.New()
	teamID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/user/"+userID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee","name":"Platform","member_ids":["` + userID.String() + `"]}]`))
	}))
	defer server.Close()

	lookup := NewHTTPTeamLookup(server.URL, time.Second, zap.NewNop())

	teams, err := lookup.TeamsForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, teamID, teams[0].ID)
	assert.Equal(t, "Platform", teams[0].Name)
	assert.Equal(t, []uuid.UUID{userID}, teams[0].MemberIDs)
}

func TestHTTPUserLookup_FindByID(t *testing.T) {
	userID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/"+userID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"11111111-2222-3333-4444-555555555555","username":"alice","email":"alice@example.com","role":"PROJECT_MANAGER"}`))
	}))
	defer server.Close()

	lookup := NewHTTPUserLookup(server.URL, time.Second, zap.NewNop())

	snapshot, err := lookup.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, snapshot.ID)
	assert.Equal(t, "alice", snapshot.Username)
	assert.Equal(t, shared.RoleProjectManager, snapshot.Role)
}

func TestHTTPUserLookup_FindByID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	lookup := NewHTTPUserLookup(server.URL, time.Second, zap.NewNop())

	_, err := lookup.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHTTPProjectLookup_Exists(t *testing.T) {
	projectID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/exists/"+projectID.String(), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`true`))
	}))
	defer server.Close()

	lookup := NewHTTPProjectLookup(server.URL, time.Second, zap.NewNop())

	exists, err := lookup.Exists(context.Background(), projectID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHTTPLookup_TimeoutIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	lookup := NewHTTPProjectLookup(server.URL, 20*time.Millisecond, zap.NewNop())

	_, err := lookup.Exists(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
}
