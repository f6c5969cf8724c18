package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/domain/task"
)

// GormTaskRepository implements task.Repository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

var _ task.Repository = (*GormTaskRepository)(nil)

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Create persists a new task
func (r *GormTaskRepository) Create(ctx context.Context, t *task.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Update persists changes to an existing task
func (r *GormTaskRepository) Update(ctx context.Context, t *task.Task) error {
	// A map update so a nil assignee clears the column
	result := r.db.WithContext(ctx).Model(t).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"status":      string(t.Status),
			"assignee_id": t.AssigneeID,
			"updated_at":  t.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a task by ID
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&task.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID retrieves a task by its ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var t task.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindByProjectID retrieves all tasks belonging to a project
func (r *GormTaskRepository) FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*task.Task, error) {
	var tasks []*task.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByAssigneeID retrieves all tasks assigned to a user
func (r *GormTaskRepository) FindByAssigneeID(ctx context.Context, assigneeID uuid.UUID) ([]*task.Task, error) {
	var tasks []*task.Task
	err := r.db.WithContext(ctx).
		Where("assignee_id = ?", assigneeID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Search retrieves tasks matching the filter
func (r *GormTaskRepository) Search(ctx context.Context, filter task.SearchFilter) ([]*task.Task, error) {
	query := r.db.WithContext(ctx).Model(&task.Task{})
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var tasks []*task.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// AddHistory persists history records for a task
func (r *GormTaskRepository) AddHistory(ctx context.Context, records ...*task.History) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

// FindHistory retrieves history records for a task, newest first
func (r *GormTaskRepository) FindHistory(ctx context.Context, taskID uuid.UUID) ([]*task.History, error) {
	var records []*task.History
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("modified_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
