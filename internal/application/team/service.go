package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/team"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
	"github.com/taskfabric/backend/internal/infrastructure/client"
)

// Service handles team-related business operations. Team views change
// often, so every team-scoped key is cached with the short volatile TTL.
// Mutations run validate, persist, cache update, publish, in that order;
// cache and publish failures are logged but never fail the mutation.
type Service struct {
	repo      team.Repository
	cache     cache.Store
	users     client.UserLookup
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new team Service
func NewService(repo team.Repository, cacheStore cache.Store, users client.UserLookup, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cacheStore,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Create creates a new team. Team members may not create teams.
func (s *Service) Create(ctx context.Context, caller shared.Caller, req CreateTeamRequest) (*TeamResponse, error) {
	if caller.Role == shared.RoleTeamMember {
		return nil, shared.ErrForbidden
	}

	t, err := team.NewTeam(req.Name, req.Description, caller)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	resp := ToTeamResponse(t)
	s.cacheSet(ctx, cache.TeamKey(t.ID), resp, cache.VolatileTTL)
	s.invalidate(ctx, cache.TeamsAllKey())

	s.publish(ctx, t)
	return &resp, nil
}

// Update changes a team's name and description
func (s *Service) Update(ctx context.Context, caller shared.Caller, id uuid.UUID, req UpdateTeamRequest) (*TeamResponse, error) {
	if caller.Role == shared.RoleTeamMember {
		return nil, shared.ErrForbidden
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := t.Update(req.Name, req.Description, caller); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	resp := ToTeamResponse(t)
	s.cacheSet(ctx, cache.TeamKey(t.ID), resp, cache.VolatileTTL)
	s.invalidate(ctx, cache.TeamsAllKey())

	s.publish(ctx, t)
	return &resp, nil
}

// Delete removes a team and every cache entry derived from it
func (s *Service) Delete(ctx context.Context, caller shared.Caller, id uuid.UUID) error {
	if caller.Role == shared.RoleTeamMember {
		return shared.ErrForbidden
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	t.MarkDeleted(caller)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	stale := []string{
		cache.TeamKey(id),
		cache.TeamMembersKey(id),
		cache.TeamsAllKey(),
	}
	for _, userID := range t.MemberIDs() {
		stale = append(stale, cache.TeamsByUserKey(userID))
	}
	s.invalidate(ctx, stale...)

	s.publish(ctx, t)
	return nil
}

// AddMember adds a user to a team. The user is validated against the user
// service first; an unreachable user service aborts the mutation.
func (s *Service) AddMember(ctx context.Context, caller shared.Caller, teamID uuid.UUID, req AddMemberRequest) (*TeamResponse, error) {
	if caller.Role == shared.RoleTeamMember {
		return nil, shared.ErrForbidden
	}

	exists, err := s.users.Exists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "user does not exist")
	}

	t, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := t.AddMember(req.UserID, caller); err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, team.TeamMember{TeamID: teamID, UserID: req.UserID}); err != nil {
		return nil, err
	}

	resp := ToTeamResponse(t)
	s.cacheSet(ctx, cache.TeamKey(t.ID), resp, cache.VolatileTTL)
	s.invalidate(ctx,
		cache.TeamMembersKey(teamID),
		cache.TeamsByUserKey(req.UserID),
		cache.TeamsAllKey(),
	)

	s.publish(ctx, t)
	return &resp, nil
}

// RemoveMember removes a user from a team
func (s *Service) RemoveMember(ctx context.Context, caller shared.Caller, teamID, userID uuid.UUID) (*TeamResponse, error) {
	if caller.Role == shared.RoleTeamMember {
		return nil, shared.ErrForbidden
	}

	t, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := t.RemoveMember(userID, caller); err != nil {
		return nil, err
	}

	if err := s.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	resp := ToTeamResponse(t)
	s.cacheSet(ctx, cache.TeamKey(t.ID), resp, cache.VolatileTTL)
	s.invalidate(ctx,
		cache.TeamMembersKey(teamID),
		cache.TeamsByUserKey(userID),
		cache.TeamsAllKey(),
	)

	s.publish(ctx, t)
	return &resp, nil
}

// GetByID retrieves a team by ID
func (s *Service) GetByID(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TeamResponse, error) {
	key := cache.TeamKey(id)

	var cached TeamResponse
	if found := getCached(ctx, s, key, &cached); found {
		return &cached, nil
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToTeamResponse(t)
	s.cacheSet(ctx, key, resp, cache.VolatileTTL)
	return &resp, nil
}

// GetAll retrieves all teams
func (s *Service) GetAll(ctx context.Context, caller shared.Caller) ([]TeamResponse, error) {
	key := cache.TeamsAllKey()

	var cached []TeamResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	teams, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := ToTeamResponses(teams)
	s.cacheSet(ctx, key, resp, cache.VolatileTTL)
	return resp, nil
}

// GetByUser retrieves all teams the given user belongs to
func (s *Service) GetByUser(ctx context.Context, caller shared.Caller, userID uuid.UUID) ([]TeamResponse, error) {
	key := cache.TeamsByUserKey(userID)

	var cached []TeamResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	teams, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToTeamResponses(teams)
	s.cacheSet(ctx, key, resp, cache.VolatileTTL)
	return resp, nil
}

// GetMembers retrieves the member IDs of a team
func (s *Service) GetMembers(ctx context.Context, caller shared.Caller, teamID uuid.UUID) ([]uuid.UUID, error) {
	key := cache.TeamMembersKey(teamID)

	var cached []uuid.UUID
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	t, err := s.repo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	ids := t.MemberIDs()
	s.cacheSet(ctx, key, ids, cache.VolatileTTL)
	return ids, nil
}

// Exists reports whether a team exists. Serves the internal lookup endpoint.
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

// HasMember reports whether a user belongs to a team. Serves the internal
// membership endpoint used by other services.
func (s *Service) HasMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	return s.repo.HasMember(ctx, teamID, userID)
}

// TeamsForUser returns the teams a user belongs to. Serves the internal
// per-user endpoint; unlike GetByUser it is not caller-gated and reads the
// store directly.
func (s *Service) TeamsForUser(ctx context.Context, userID uuid.UUID) ([]TeamResponse, error) {
	teams, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToTeamResponses(teams), nil
}

// publish drains the aggregate's pending events; failures are logged only
func (s *Service) publish(ctx context.Context, t *team.Team) {
	events := t.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish team events",
			zap.String("team_id", t.ID.String()), zap.Error(err))
	}
	t.ClearDomainEvents()
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
