package user

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/user"
	"github.com/taskfabric/backend/internal/infrastructure/auth"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return shared.ErrNotFound
	}
	copied := *u
	r.users[u.ID] = &copied
	return nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) FindByRole(_ context.Context, role *shared.Role) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, u := range r.users {
		if role == nil || u.Role == *role {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

type userFixture struct {
	service *Service
	repo    *memoryUserRepo
	store   *cache.MemoryStore
}

func newUserFixture() *userFixture {
	f := &userFixture{
		repo:  newMemoryUserRepo(),
		store: cache.NewMemoryStore(),
	}
	tokens := auth.NewTokenManager("test-secret-key-at-least-32-chars!!", "taskfabric", time.Hour)
	f.service = NewService(f.repo, f.store, tokens, zap.NewNop())
	return f
}

func (f *userFixture) register(t *testing.T, email string, role shared.Role) *UserResponse {
	t.Helper()
	resp, err := f.service.Register(context.Background(), RegisterRequest{
		Username: "alex",
		Email:    email,
		Password: "correct horse battery staple",
		Role:     string(role),
	})
	require.NoError(t, err)
	return resp
}

func TestService_Register(t *testing.T) {
	f := newUserFixture()

	resp := f.register(t, "alex@example.com", shared.RoleProjectManager)
	assert.Equal(t, "alex@example.com", resp.Email)
	assert.Equal(t, shared.RoleProjectManager, resp.Role)

	// both entity keys are warm after registration
	_, found, err := f.store.Get(context.Background(), cache.UserKey(resp.ID))
	require.NoError(t, err)
	assert.True(t, found)
	_, found, err = f.store.Get(context.Background(), cache.UserByEmailKey(resp.Email))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	f := newUserFixture()
	f.register(t, "alex@example.com", shared.RoleTeamMember)

	_, err := f.service.Register(context.Background(), RegisterRequest{
		Username: "other",
		Email:    "alex@example.com",
		Password: "another long password",
		Role:     string(shared.RoleTeamMember),
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestService_Login(t *testing.T) {
	f := newUserFixture()
	f.register(t, "alex@example.com", shared.RoleAdmin)

	resp, err := f.service.Login(context.Background(), LoginRequest{
		Email:    "alex@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alex@example.com", resp.User.Email)
}

func TestService_Login_WrongPassword(t *testing.T) {
	f := newUserFixture()
	f.register(t, "alex@example.com", shared.RoleAdmin)

	_, err := f.service.Login(context.Background(), LoginRequest{
		Email:    "alex@example.com",
		Password: "not the password",
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestService_Login_UnknownEmailIsUnauthorized(t *testing.T) {
	f := newUserFixture()

	// unknown accounts and bad passwords are indistinguishable to the caller
	_, err := f.service.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever password",
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestService_GetByID_CacheAside(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	created := f.register(t, "alex@example.com", shared.RoleTeamMember)
	caller := shared.Caller{UserID: created.ID, Role: shared.RoleTeamMember}

	// delete from the store; the warm cache still serves the read
	require.NoError(t, f.repo.Delete(ctx, created.ID))

	resp, err := f.service.GetByID(ctx, caller, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	require.NoError(t, f.store.Remove(ctx, cache.UserKey(created.ID)))
	_, err = f.service.GetByID(ctx, caller, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ListByRole(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.register(t, "pm@example.com", shared.RoleProjectManager)
	f.register(t, "dev@example.com", shared.RoleTeamMember)
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	role := shared.RoleProjectManager
	users, err := f.service.ListByRole(ctx, admin, &role)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "pm@example.com", users[0].Email)

	all, err := f.service.ListByRole(ctx, admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_ListByRole_ForbiddenForTeamMember(t *testing.T) {
	f := newUserFixture()
	member := shared.Caller{UserID: uuid.New(), Role: shared.RoleTeamMember}

	_, err := f.service.ListByRole(context.Background(), member, nil)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_ListByRole_InvalidRole(t *testing.T) {
	f := newUserFixture()
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	bogus := shared.Role("SUPERUSER")
	_, err := f.service.ListByRole(context.Background(), admin, &bogus)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestService_Update_SelfCannotChangeRole(t *testing.T) {
	f := newUserFixture()
	created := f.register(t, "alex@example.com", shared.RoleTeamMember)
	caller := shared.Caller{UserID: created.ID, Role: shared.RoleTeamMember}

	_, err := f.service.Update(context.Background(), caller, created.ID, UpdateUserRequest{
		Username: "alex",
		Email:    "alex@example.com",
		Role:     string(shared.RoleAdmin),
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_Update_EmailChangeInvalidatesOldKey(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	created := f.register(t, "alex@example.com", shared.RoleTeamMember)
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	resp, err := f.service.Update(ctx, admin, created.ID, UpdateUserRequest{
		Username: "alex",
		Email:    "alex.new@example.com",
		Role:     string(shared.RoleTeamMember),
	})
	require.NoError(t, err)
	assert.Equal(t, "alex.new@example.com", resp.Email)

	_, found, err := f.store.Get(ctx, cache.UserByEmailKey("alex@example.com"))
	require.NoError(t, err)
	assert.False(t, found, "stale email key should be invalidated")

	_, found, err = f.store.Get(ctx, cache.UserByEmailKey("alex.new@example.com"))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestService_Update_OtherUserForbidden(t *testing.T) {
	f := newUserFixture()
	created := f.register(t, "alex@example.com", shared.RoleTeamMember)
	other := shared.Caller{UserID: uuid.New(), Role: shared.RoleProjectManager}

	_, err := f.service.Update(context.Background(), other, created.ID, UpdateUserRequest{
		Username: "alex",
		Email:    "alex@example.com",
		Role:     string(shared.RoleTeamMember),
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestService_Delete(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	created := f.register(t, "alex@example.com", shared.RoleTeamMember)
	admin := shared.Caller{UserID: uuid.New(), Role: shared.RoleAdmin}

	require.NoError(t, f.service.Delete(ctx, admin, created.ID))

	_, found, err := f.store.Get(ctx, cache.UserKey(created.ID))
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := f.service.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Delete_SelfForbidden(t *testing.T) {
	f := newUserFixture()
	created := f.register(t, "alex@example.com", shared.RoleAdmin)
	self := shared.Caller{UserID: created.ID, Role: shared.RoleAdmin}

	err := f.service.Delete(context.Background(), self, created.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestService_Delete_NonAdminForbidden(t *testing.T) {
	f := newUserFixture()
	created := f.register(t, "alex@example.com", shared.RoleTeamMember)
	pm := shared.Caller{UserID: uuid.New(), Role: shared.RoleProjectManager}

	err := f.service.Delete(context.Background(), pm, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
