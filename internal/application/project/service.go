package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/project"
	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
	"github.com/taskfabric/backend/internal/infrastructure/client"
)

// Service handles project-related business operations.
//
// Search results are cached unfiltered and role visibility is re-applied on
// every read, cache hit or miss, so a cached result set never leaks projects
// the caller may not see. Mutations run validate, persist, cache update,
// publish, in that order; when a mutation moves a project between parents
// the old parent's list is removed before the new one's.
type Service struct {
	repo      project.Repository
	cache     cache.Store
	teams     client.TeamLookup
	users     client.UserLookup
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new project Service
func NewService(
	repo project.Repository,
	cacheStore cache.Store,
	teams client.TeamLookup,
	users client.UserLookup,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     cacheStore,
		teams:     teams,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Create creates a new project. The referenced project manager is validated
// against the user service; an unreachable user service aborts the mutation.
func (s *Service) Create(ctx context.Context, caller shared.Caller, req CreateProjectRequest) (*ProjectResponse, error) {
	if caller.Role == shared.RoleTeamMember {
		return nil, shared.ErrForbidden
	}

	exists, err := s.users.Exists(ctx, req.ProjectManagerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "project manager does not exist")
	}

	p, err := project.NewProject(req.Name, req.Description, project.Status(req.Status), req.ProjectManagerID, caller)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProjectResponse(p)
	s.cacheSet(ctx, cache.ProjectKey(p.ID), resp, cache.DefaultTTL)
	s.invalidate(ctx,
		cache.ProjectsByManagerKey(p.ProjectManagerID),
		cache.ProjectSearchKey("", ""),
		cache.ProjectSearchKey("", string(p.Status)),
	)

	s.publish(ctx, p)
	return &resp, nil
}

// Update changes a project's fields. Project managers may only update
// projects they manage.
func (s *Service) Update(ctx context.Context, caller shared.Caller, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManagement(caller, p); err != nil {
		return nil, err
	}

	oldManagerID := p.ProjectManagerID
	oldStatus := p.Status

	if req.ProjectManagerID != oldManagerID {
		exists, err := s.users.Exists(ctx, req.ProjectManagerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewDomainError("NOT_FOUND", "project manager does not exist")
		}
	}

	if err := p.Update(req.Name, req.Description, project.Status(req.Status), req.ProjectManagerID, caller); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProjectResponse(p)
	s.cacheSet(ctx, cache.ProjectKey(p.ID), resp, cache.DefaultTTL)

	// old parent's list before the new one's
	stale := []string{cache.ProjectsByManagerKey(oldManagerID)}
	if p.ProjectManagerID != oldManagerID {
		stale = append(stale, cache.ProjectsByManagerKey(p.ProjectManagerID))
	}
	stale = append(stale,
		cache.ProjectSearchKey("", ""),
		cache.ProjectSearchKey("", string(oldStatus)),
		cache.ProjectSearchKey("", string(p.Status)),
	)
	for _, teamID := range p.TeamIDs() {
		stale = append(stale, cache.ProjectsByTeamKey(teamID))
	}
	s.invalidate(ctx, stale...)

	s.publish(ctx, p)
	return &resp, nil
}

// UpdateStatus transitions a project to a new status
func (s *Service) UpdateStatus(ctx context.Context, caller shared.Caller, id uuid.UUID, req UpdateStatusRequest) (*ProjectResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManagement(caller, p); err != nil {
		return nil, err
	}

	oldStatus := p.Status
	if err := p.UpdateStatus(project.Status(req.Status), caller); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProjectResponse(p)
	s.cacheSet(ctx, cache.ProjectKey(p.ID), resp, cache.DefaultTTL)

	stale := []string{
		cache.ProjectsByManagerKey(p.ProjectManagerID),
		cache.ProjectSearchKey("", ""),
		cache.ProjectSearchKey("", string(oldStatus)),
		cache.ProjectSearchKey("", string(p.Status)),
	}
	for _, teamID := range p.TeamIDs() {
		stale = append(stale, cache.ProjectsByTeamKey(teamID))
	}
	s.invalidate(ctx, stale...)

	s.publish(ctx, p)
	return &resp, nil
}

// AddTeam assigns a team to a project. The team is validated against the
// team service; an unreachable team service aborts the mutation.
func (s *Service) AddTeam(ctx context.Context, caller shared.Caller, id uuid.UUID, req AddTeamRequest) (*ProjectResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireManagement(caller, p); err != nil {
		return nil, err
	}

	exists, err := s.teams.Exists(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "team does not exist")
	}

	if err := p.AddTeam(req.TeamID, caller); err != nil {
		return nil, err
	}

	if err := s.repo.AddTeam(ctx, project.ProjectTeam{ProjectID: id, TeamID: req.TeamID}); err != nil {
		return nil, err
	}

	resp := ToProjectResponse(p)
	s.cacheSet(ctx, cache.ProjectKey(p.ID), resp, cache.DefaultTTL)
	s.invalidate(ctx, cache.ProjectsByTeamKey(req.TeamID))

	s.publish(ctx, p)
	return &resp, nil
}

// Delete removes a project and every cache entry derived from it
func (s *Service) Delete(ctx context.Context, caller shared.Caller, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireManagement(caller, p); err != nil {
		return err
	}
	p.MarkDeleted(caller)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	stale := []string{
		cache.ProjectKey(id),
		cache.ProjectsByManagerKey(p.ProjectManagerID),
		cache.ProjectSearchKey("", ""),
		cache.ProjectSearchKey("", string(p.Status)),
	}
	for _, teamID := range p.TeamIDs() {
		stale = append(stale, cache.ProjectsByTeamKey(teamID))
	}
	s.invalidate(ctx, stale...)

	s.publish(ctx, p)
	return nil
}

// GetByID retrieves a project by ID
func (s *Service) GetByID(ctx context.Context, caller shared.Caller, id uuid.UUID) (*ProjectResponse, error) {
	key := cache.ProjectKey(id)

	var cached ProjectResponse
	if found := getCached(ctx, s, key, &cached); found {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToProjectResponse(p)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return &resp, nil
}

// GetByManager retrieves all projects managed by the given user. The
// manager's existence is validated against the user service on the miss
// path; an unknown manager is NotFound rather than an empty list.
func (s *Service) GetByManager(ctx context.Context, caller shared.Caller, managerID uuid.UUID) ([]ProjectResponse, error) {
	key := cache.ProjectsByManagerKey(managerID)

	var cached []ProjectResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	exists, err := s.users.Exists(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "manager does not exist")
	}

	projects, err := s.repo.FindByManagerID(ctx, managerID)
	if err != nil {
		return nil, err
	}

	resp := ToProjectResponses(projects)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return resp, nil
}

// GetByTeam retrieves all projects a team is assigned to. Every non-admin
// caller must belong to the team; the membership and team-existence checks
// run on the miss path, a cached entry within its short TTL is served as-is.
func (s *Service) GetByTeam(ctx context.Context, caller shared.Caller, teamID uuid.UUID) ([]ProjectResponse, error) {
	key := cache.ProjectsByTeamKey(teamID)

	var cached []ProjectResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	if !caller.IsAdmin() {
		isMember, err := s.teams.HasMember(ctx, teamID, caller.UserID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, shared.ErrForbidden
		}
	}

	exists, err := s.teams.Exists(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "team does not exist")
	}

	projects, err := s.repo.FindByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	resp := ToProjectResponses(projects)
	s.cacheSet(ctx, key, resp, cache.VolatileTTL)
	return resp, nil
}

// Search retrieves projects matching the request, restricted to what the
// caller may see. The unfiltered result set is what gets cached; visibility
// filtering runs after the cache on both the hit and the miss path.
func (s *Service) Search(ctx context.Context, caller shared.Caller, req SearchRequest) ([]ProjectResponse, error) {
	if req.Status != "" && !project.ValidStatus(project.Status(req.Status)) {
		return nil, shared.NewDomainError("INVALID_STATUS", "project status must be one of Planning, InProgress, Completed")
	}
	key := cache.ProjectSearchKey(req.Name, req.Status)

	var cached []ProjectResponse
	if found := getCached(ctx, s, key, &cached); found {
		return s.filterVisible(ctx, caller, cached)
	}

	filter := project.SearchFilter{}
	if req.Name != "" {
		filter.Name = &req.Name
	}
	if req.Status != "" {
		status := project.Status(req.Status)
		filter.Status = &status
	}

	projects, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := ToProjectResponses(projects)
	s.cacheSet(ctx, key, resp, cache.SearchTTL)
	return s.filterVisible(ctx, caller, resp)
}

// Exists reports whether a project exists. Serves the internal lookup endpoint.
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

// filterVisible restricts a result set to the caller's visibility: admins
// see everything, project managers see the projects they manage, team
// members see projects that have one of their teams assigned. The caller's
// teams are fetched once per call rather than per candidate row.
func (s *Service) filterVisible(ctx context.Context, caller shared.Caller, projects []ProjectResponse) ([]ProjectResponse, error) {
	switch caller.Role {
	case shared.RoleAdmin:
		return projects, nil
	case shared.RoleProjectManager:
		out := make([]ProjectResponse, 0, len(projects))
		for _, p := range projects {
			if p.ProjectManagerID == caller.UserID {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		teams, err := s.teams.TeamsForUser(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		memberOf := make(map[uuid.UUID]bool, len(teams))
		for _, t := range teams {
			memberOf[t.ID] = true
		}
		out := make([]ProjectResponse, 0, len(projects))
		for _, p := range projects {
			for _, teamID := range p.TeamIDs {
				if memberOf[teamID] {
					out = append(out, p)
					break
				}
			}
		}
		return out, nil
	}
}

// requireManagement allows admins and the managing project manager
func (s *Service) requireManagement(caller shared.Caller, p *project.Project) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.IsProjectManager() && p.ProjectManagerID == caller.UserID {
		return nil
	}
	return shared.ErrForbidden
}

// publish drains the aggregate's pending events; failures are logged only
func (s *Service) publish(ctx context.Context, p *project.Project) {
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish project events",
			zap.String("project_id", p.ID.String()), zap.Error(err))
	}
	p.ClearDomainEvents()
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
