package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/task"
	"github.com/taskfabric/backend/internal/infrastructure/cache"
	"github.com/taskfabric/backend/internal/infrastructure/client"
)

// Service handles task-related business operations. Every change to a task
// is recorded in its history; updates that change nothing record nothing
// and publish nothing. When a task moves between assignees the old
// assignee's list is removed before the new one's.
type Service struct {
	repo      task.Repository
	cache     cache.Store
	projects  client.ProjectLookup
	users     client.UserLookup
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewService creates a new task Service
func NewService(
	repo task.Repository,
	cacheStore cache.Store,
	projects client.ProjectLookup,
	users client.UserLookup,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     cacheStore,
		projects:  projects,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// Create creates a new task. The referenced project, and the assignee when
// one is given, are validated against their owning services; an unreachable
// service aborts the mutation.
func (s *Service) Create(ctx context.Context, caller shared.Caller, req CreateTaskRequest) (*TaskResponse, error) {
	exists, err := s.projects.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "project does not exist")
	}

	if req.AssigneeID != nil {
		exists, err := s.users.Exists(ctx, *req.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewDomainError("NOT_FOUND", "assignee does not exist")
		}
	}

	t, err := task.NewTask(req.ProjectID, req.Title, req.Description, task.Status(req.Status), req.AssigneeID, caller)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	resp := ToTaskResponse(t)
	s.cacheSet(ctx, cache.TaskKey(t.ID), resp, cache.DefaultTTL)
	stale := []string{
		cache.TasksByProjectKey(t.ProjectID),
		cache.TaskSearchKey("", "", ""),
		cache.TaskSearchKey(t.ProjectID.String(), "", ""),
	}
	if t.AssigneeID != nil {
		stale = append(stale, cache.TasksByAssigneeKey(*t.AssigneeID))
	}
	s.invalidate(ctx, stale...)

	s.publish(ctx, t)
	return &resp, nil
}

// Update applies field changes to a task. A no-op update persists nothing,
// records no history, and publishes no event.
func (s *Service) Update(ctx context.Context, caller shared.Caller, id uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(caller, t); err != nil {
		return nil, err
	}

	oldAssignee := t.AssigneeID

	if req.AssigneeID != nil && !assigneeEqual(oldAssignee, req.AssigneeID) {
		exists, err := s.users.Exists(ctx, *req.AssigneeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewDomainError("NOT_FOUND", "assignee does not exist")
		}
	}

	changes, err := t.ApplyUpdate(req.Title, req.Description, task.Status(req.Status), req.AssigneeID, caller)
	if err != nil {
		return nil, err
	}

	resp := ToTaskResponse(t)
	if len(changes) == 0 {
		return &resp, nil
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.recordHistory(ctx, t.ID, caller.UserID, changes)

	s.cacheSet(ctx, cache.TaskKey(t.ID), resp, cache.DefaultTTL)

	// old assignee's list before the new one's
	stale := []string{cache.TasksByProjectKey(t.ProjectID)}
	if oldAssignee != nil {
		stale = append(stale, cache.TasksByAssigneeKey(*oldAssignee))
	}
	if t.AssigneeID != nil && !assigneeEqual(oldAssignee, t.AssigneeID) {
		stale = append(stale, cache.TasksByAssigneeKey(*t.AssigneeID))
	}
	stale = append(stale,
		cache.TaskSearchKey("", "", ""),
		cache.TaskSearchKey(t.ProjectID.String(), "", ""),
	)
	s.invalidate(ctx, stale...)

	s.publish(ctx, t)
	return &resp, nil
}

// UpdateStatus transitions a task to a new status
func (s *Service) UpdateStatus(ctx context.Context, caller shared.Caller, id uuid.UUID, req UpdateStatusRequest) (*TaskResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(caller, t); err != nil {
		return nil, err
	}

	oldStatus := t.Status
	if err := t.UpdateStatus(task.Status(req.Status), caller); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	if oldStatus != t.Status {
		s.recordHistory(ctx, t.ID, caller.UserID,
			[]string{"Status changed from '" + string(oldStatus) + "' to '" + string(t.Status) + "'"})
	}

	resp := ToTaskResponse(t)
	s.cacheSet(ctx, cache.TaskKey(t.ID), resp, cache.DefaultTTL)
	stale := []string{
		cache.TasksByProjectKey(t.ProjectID),
		cache.TaskSearchKey("", "", ""),
		cache.TaskSearchKey(t.ProjectID.String(), "", ""),
	}
	if t.AssigneeID != nil {
		stale = append(stale, cache.TasksByAssigneeKey(*t.AssigneeID))
	}
	s.invalidate(ctx, stale...)

	s.publish(ctx, t)
	return &resp, nil
}

// Delete removes a task. Deletion publishes no event.
func (s *Service) Delete(ctx context.Context, caller shared.Caller, id uuid.UUID) error {
	if caller.Role == shared.RoleTeamMember {
		return shared.ErrForbidden
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	stale := []string{
		cache.TaskKey(id),
		cache.TasksByProjectKey(t.ProjectID),
		cache.TaskSearchKey("", "", ""),
		cache.TaskSearchKey(t.ProjectID.String(), "", ""),
	}
	if t.AssigneeID != nil {
		stale = append(stale, cache.TasksByAssigneeKey(*t.AssigneeID))
	}
	s.invalidate(ctx, stale...)
	return nil
}

// GetByID retrieves a task by ID
func (s *Service) GetByID(ctx context.Context, caller shared.Caller, id uuid.UUID) (*TaskResponse, error) {
	key := cache.TaskKey(id)

	var cached TaskResponse
	if found := getCached(ctx, s, key, &cached); found {
		return &cached, nil
	}

	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToTaskResponse(t)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return &resp, nil
}

// GetByProject retrieves all tasks belonging to a project
func (s *Service) GetByProject(ctx context.Context, caller shared.Caller, projectID uuid.UUID) ([]TaskResponse, error) {
	key := cache.TasksByProjectKey(projectID)

	var cached []TaskResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	tasks, err := s.repo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := ToTaskResponses(tasks)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return resp, nil
}

// GetByAssignee retrieves all tasks assigned to a user
func (s *Service) GetByAssignee(ctx context.Context, caller shared.Caller, assigneeID uuid.UUID) ([]TaskResponse, error) {
	key := cache.TasksByAssigneeKey(assigneeID)

	var cached []TaskResponse
	if found := getCached(ctx, s, key, &cached); found {
		return cached, nil
	}

	tasks, err := s.repo.FindByAssigneeID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}

	resp := ToTaskResponses(tasks)
	s.cacheSet(ctx, key, resp, cache.DefaultTTL)
	return resp, nil
}

// Search retrieves tasks matching the request, restricted to what the
// caller may see. The unfiltered result set is what gets cached; visibility
// filtering runs after the cache on both the hit and the miss path.
func (s *Service) Search(ctx context.Context, caller shared.Caller, req SearchRequest) ([]TaskResponse, error) {
	filter, err := parseSearchFilter(req)
	if err != nil {
		return nil, err
	}
	key := cache.TaskSearchKey(req.ProjectID, req.Status, req.AssigneeID)

	var cached []TaskResponse
	if found := getCached(ctx, s, key, &cached); found {
		return filterVisible(caller, cached), nil
	}

	tasks, err := s.repo.Search(ctx, *filter)
	if err != nil {
		return nil, err
	}

	resp := ToTaskResponses(tasks)
	s.cacheSet(ctx, key, resp, cache.SearchTTL)
	return filterVisible(caller, resp), nil
}

// GetHistory retrieves a task's change history, newest first
func (s *Service) GetHistory(ctx context.Context, caller shared.Caller, id uuid.UUID) ([]HistoryResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireTaskAccess(caller, t); err != nil {
		return nil, err
	}

	records, err := s.repo.FindHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponses(records), nil
}

// filterVisible restricts a result set to the caller's visibility: team
// members only see tasks assigned to them.
func filterVisible(caller shared.Caller, tasks []TaskResponse) []TaskResponse {
	if caller.Role != shared.RoleTeamMember {
		return tasks
	}
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		if t.AssigneeID != nil && *t.AssigneeID == caller.UserID {
			out = append(out, t)
		}
	}
	return out
}

// requireTaskAccess allows admins, project managers, and the task's assignee
func (s *Service) requireTaskAccess(caller shared.Caller, t *task.Task) error {
	if caller.Role != shared.RoleTeamMember {
		return nil
	}
	if t.AssigneeID != nil && *t.AssigneeID == caller.UserID {
		return nil
	}
	return shared.ErrForbidden
}

// recordHistory persists one history record per change description
func (s *Service) recordHistory(ctx context.Context, taskID, modifiedBy uuid.UUID, changes []string) {
	records := make([]*task.History, len(changes))
	for i, change := range changes {
		records[i] = task.NewHistory(taskID, modifiedBy, change)
	}
	if err := s.repo.AddHistory(ctx, records...); err != nil {
		s.logger.Error("failed to record task history",
			zap.String("task_id", taskID.String()), zap.Error(err))
	}
}

func parseSearchFilter(req SearchRequest) (*task.SearchFilter, error) {
	filter := &task.SearchFilter{}
	if req.ProjectID != "" {
		id, err := uuid.Parse(req.ProjectID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "project_id is not a valid UUID")
		}
		filter.ProjectID = &id
	}
	if req.Status != "" {
		status := task.Status(req.Status)
		if !task.ValidStatus(status) {
			return nil, shared.NewDomainError("INVALID_STATUS", "task status must be one of ToDo, InProgress, Done")
		}
		filter.Status = &status
	}
	if req.AssigneeID != "" {
		id, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "assignee_id is not a valid UUID")
		}
		filter.AssigneeID = &id
	}
	return filter, nil
}

func assigneeEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// publish drains the aggregate's pending events; failures are logged only
func (s *Service) publish(ctx context.Context, t *task.Task) {
	events := t.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish task events",
			zap.String("task_id", t.ID.String()), zap.Error(err))
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
