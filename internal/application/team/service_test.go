package team

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/team"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
	"github.com/taskfabric/backend/internal/infrastructure/client"
)

type memoryTeamRepo struct {
	mu    sync.Mutex
	teams map[uuid.UUID]*team.Team
}

func newMemoryTeamRepo() *memoryTeamRepo {
	return &memoryTeamRepo{teams: make(map[uuid.UUID]*team.Team)}
}

func (r *memoryTeamRepo) Create(_ context.Context, t *team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *memoryTeamRepo) Update(_ context.Context, t *team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[t.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *t
	r.teams[t.ID] = &copied
	return nil
}

func (r *memoryTeamRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.teams, id)
	return nil
}

func (r *memoryTeamRepo) FindByID(_ context.Context, id uuid.UUID) (*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *t
	copied.ClearDomainEvents()
	return &copied, nil
}

func (r *memoryTeamRepo) FindAll(_ context.Context) ([]*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*team.Team, 0, len(r.teams))
	for _, t := range r.teams {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memoryTeamRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*team.Team
	for _, t := range r.teams {
		if t.HasMember(userID) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryTeamRepo) AddMember(_ context.Context, m team.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[m.TeamID]
	if !ok {
		return shared.ErrNotFound
	}
	t.Members = append(t.Members, m)
	return nil
}

func (r *memoryTeamRepo) RemoveMember(_ context.Context, teamID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return shared.ErrNotFound
	}
	for i, m := range t.Members {
		if m.UserID == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryTeamRepo) HasMember(_ context.Context, teamID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return false, nil
	}
	return t.HasMember(userID), nil
}

type fakeUserLookup struct {
	exists bool
	err    error
	calls  int
}

func (f *fakeUserLookup) Exists(_ context.Context, _ uuid.UUID) (bool, error) {
	f.calls++
	return f.exists, f.err
}

func (f *fakeUserLookup) FindByID(_ context.Context, id uuid.UUID) (*client.UserSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.exists {
		return nil, shared.ErrNotFound
	}
	return &client.UserSnapshot{ID: id}, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic()
	}
	return out
}

type teamFixture struct {
	service   *Service
	repo      *memoryTeamRepo
	store     *cache.MemoryStore
	users     *fakeUserLookup
	publisher *capturePublisher
}

func newTeamFixture() *teamFixture {
	f := &teamFixture{
		repo:      newMemoryTeamRepo(),
		store:     cache.NewMemoryStore(),
		users:     &fakeUserLookup{exists: true},
		publisher: &capturePublisher{},
	}
	f.service = NewService(f.repo, f.store, f.users, f.publisher, zap.NewNop())
	return f
}

func TestService_Create(t *testing.T) {
	f := newTeamFixture()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	resp, err := f.service.Create(context.Background(), admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)
	assert.Equal(t, "Platform", resp.Name)
	assert.Equal(t, []string{team.TopicTeamCreated}, f.publisher.topics())

	// entity key is warm, list key was invalidated
	_, found, err := f.store.Get(context.Background(), cache.TeamKey(resp.ID))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestService_Create_ForbiddenForTeamMember(t *testing.T) {
	f := newTeamFixture()
	member := shared.Caller{UserID: uuid.New(), Role: shared.RoleTeamMember}

	_, err := f.service.Create(context.Background(), member, CreateTeamRequest{Name: "Platform"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_AddMember(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	userID := uuid.New()

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)

	// warm the member list so we can observe its invalidation
	members, err := f.service.GetMembers(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	resp, err := f.service.AddMember(ctx, admin, created.ID, AddMemberRequest{UserID: userID})
	require.NoError(t, err)
	assert.Contains(t, resp.MemberIDs, userID)
	assert.Equal(t, 1, f.users.calls)

	_, found, err := f.store.Get(ctx, cache.TeamMembersKey(created.ID))
	require.NoError(t, err)
	assert.False(t, found, "member list should be invalidated")

	members, err = f.service.GetMembers(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, members)
}

func TestService_AddMember_UnknownUser(t *testing.T) {
	f := newTeamFixture()
	f.users.exists = false
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)

	_, err = f.service.AddMember(ctx, admin, created.ID, AddMemberRequest{UserID: uuid.New()})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestService_AddMember_UpstreamUnavailable(t *testing.T) {
	f := newTeamFixture()
	f.users.err = shared.ErrUpstreamUnavailable
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)

	_, err = f.service.AddMember(ctx, admin, created.ID, AddMemberRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)

	// the failed validation must not have mutated anything
	got, err := f.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Members)
}

func TestService_RemoveMember(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	userID := uuid.New()

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, admin, created.ID, AddMemberRequest{UserID: userID})
	require.NoError(t, err)

	resp, err := f.service.RemoveMember(ctx, admin, created.ID, userID)
	require.NoError(t, err)
	assert.NotContains(t, resp.MemberIDs, userID)

	topics := f.publisher.topics()
	assert.Contains(t, topics, team.TopicMemberAdded)
	assert.Contains(t, topics, team.TopicMemberRemoved)
}

func TestService_RemoveMember_NotAMember(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)

	_, err = f.service.RemoveMember(ctx, admin, created.ID, uuid.New())
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestService_GetByID_CacheAside(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)

	// remove from the backing store; a warm cache still serves the read
	require.NoError(t, f.repo.Delete(ctx, created.ID))

	resp, err := f.service.GetByID(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	// once the entry is gone the miss path hits the repository
	require.NoError(t, f.store.Remove(ctx, cache.TeamKey(created.ID)))
	_, err = f.service.GetByID(ctx, admin, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Delete_InvalidatesMemberViews(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	userID := uuid.New()

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, admin, created.ID, AddMemberRequest{UserID: userID})
	require.NoError(t, err)

	// warm the per-user view
	teams, err := f.service.GetByUser(ctx, admin, userID)
	require.NoError(t, err)
	require.Len(t, teams, 1)

	require.NoError(t, f.service.Delete(ctx, admin, created.ID))

	_, found, err := f.store.Get(ctx, cache.TeamsByUserKey(userID))
	require.NoError(t, err)
	assert.False(t, found, "per-user team view should be invalidated")

	teams, err = f.service.GetByUser(ctx, admin, userID)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestService_HasMember(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	userID := uuid.New()

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, admin, created.ID, AddMemberRequest{UserID: userID})
	require.NoError(t, err)

	ok, err := f.service.HasMember(ctx, created.ID, userID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.service.HasMember(ctx, created.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Exists(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	created, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)

	ok, err := f.service.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.service.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_TeamsForUser(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}
	userID := uuid.New()

	first, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Platform"})
	require.NoError(t, err)
	second, err := f.service.Create(ctx, admin, CreateTeamRequest{Name: "Infra"})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, admin, first.ID, AddMemberRequest{UserID: userID})
	require.NoError(t, err)
	_, err = f.service.AddMember(ctx, admin, second.ID, AddMemberRequest{UserID: userID})
	require.NoError(t, err)

	teams, err := f.service.TeamsForUser(ctx, userID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(teams))
	for i, snapshot := range teams {
		ids[i] = snapshot.ID
	}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)

	teams, err = f.service.TeamsForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, teams)
}
