package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/user"
	"github.com/taskfabric/backend/internal/infrastructure/auth"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
)

// Service handles user-related business operations. Reads follow the
// cache-aside pattern; mutations persist first, then refresh the entity
// cache and invalidate any list keys the change made stale.
type Service struct {
	repo   user.Repository
	cache  cache.Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewService creates a new user Service
func NewService(repo user.Repository, cacheStore cache.Store, tokens *auth.TokenManager, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cacheStore,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "a user with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := user.NewUser(req.Username, req.Email, hash, shared.Role(req.Role))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	s.cacheSet(ctx, cache.UserKey(u.ID), resp, cache.DefaultTTL)
	s.cacheSet(ctx, cache.UserByEmailKey(u.Email), resp, cache.DefaultTTL)
	s.invalidate(ctx,
		cache.UsersByRoleKey(string(u.Role)),
		cache.UsersByRoleKey(""),
	)

	return &resp, nil
}

// Login authenticates a user and issues an access token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return nil, shared.ErrUnauthorized
	}

	token, err := s.tokens.Generate(u.ID, u.Role)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	s.cacheSet(ctx, cache.UserByEmailKey(u.Email), resp, cache.DefaultTTL)

	return &LoginResponse{Token: token, User: resp}, nil
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(ctx context.Context, caller shared.Caller, id uuid.UUID) (*UserResponse, error) {
	key := cache.UserKey(id)

	var cached UserResponse
	if found := getCached(ctx, s, key, &cached); found {
		return &cached, nil
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return &resp, nil
}

// GetByEmail retrieves a user by email
func (s *Service) GetByEmail(ctx context.Context, caller shared.Caller, email string) (*UserResponse, error) {
	email = strings.ToLower(email)
	key := cache.UserByEmailKey(email)

	var cached UserResponse
	if found := getCached(ctx, s, key, &cached); found {
		return &cached, nil
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return &resp, nil
}

// ListByRole retrieves users filtered by role; a nil role lists everyone.
// Team members may not enumerate users.
func (s *Service) ListByRole(ctx context.Context, caller shared.Caller, role *shared.Role) ([]UserResponse, error) {
	if caller.Role == shared.RoleTeamMember {
		return nil, shared.ErrForbidden
	}
	if role != nil && !shared.ValidRole(*role) {
		return nil, shared.NewDomainError("INVALID_INPUT", "unknown role")
	}

	roleParam := ""
	if role != nil {
		roleParam = string(*role)
	}
	key := cache.UsersByRoleKey(roleParam)

	var cached []UserResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	users, err := s.repo.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponses(users)
	s.cacheSet(ctx, key, resp, cache.SearchTTL)
	return resp, nil
}

// Update changes a user's profile. Admins may update anyone; other callers
// may only update themselves and may not change their own role.
func (s *Service) Update(ctx context.Context, caller shared.Caller, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	if !caller.IsAdmin() && caller.UserID != id {
		return nil, shared.ErrForbidden
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newRole := shared.Role(req.Role)
	if !caller.IsAdmin() && newRole != u.Role {
		return nil, shared.ErrForbidden
	}

	oldEmail := u.Email
	oldRole := u.Role

	newEmail := strings.ToLower(req.Email)
	if newEmail != oldEmail {
		exists, err := s.repo.ExistsByEmail(ctx, newEmail)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "a user with this email already exists")
		}
	}

	if err := u.Update(req.Username, req.Email, newRole); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	s.cacheSet(ctx, cache.UserKey(u.ID), resp, cache.DefaultTTL)
	s.cacheSet(ctx, cache.UserByEmailKey(u.Email), resp, cache.DefaultTTL)

	stale := []string{
		cache.UsersByRoleKey(string(oldRole)),
		cache.UsersByRoleKey(string(u.Role)),
		cache.UsersByRoleKey(""),
	}
	if oldEmail != u.Email {
		stale = append(stale, cache.UserByEmailKey(oldEmail))
	}
	s.invalidate(ctx, stale...)

	return &resp, nil
}

// Delete removes a user. Only admins may delete, and never themselves.
func (s *Service) Delete(ctx context.Context, caller shared.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return shared.ErrForbidden
	}
	if caller.UserID == id {
		return shared.NewDomainError("INVALID_INPUT", "you cannot delete your own account")
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx,
		cache.UserKey(id),
		cache.UserByEmailKey(u.Email),
		cache.UsersByRoleKey(string(u.Role)),
		cache.UsersByRoleKey(""),
	)
	return nil
}

// Exists reports whether a user exists. Serves the internal lookup endpoint.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Snapshot returns the internal read-only view of a user
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(u)
	return &resp, nil
}

// getCached reads a cached value into dest; cache errors degrade to a miss
func getCached[T any](ctx context.Context, s *Service, key string, dest *T) bool {
	found, err := cache.GetJSON(ctx, s.cache, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

// cacheSet stores a value; cache errors are logged, never surfaced
func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := cache.SetJSON(ctx, s.cache, key, value, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate removes keys; cache errors are logged, never surfaced
func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Remove(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
