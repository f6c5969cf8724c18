package task

import (
	"context"

	"github.com/google/uuid"
)

// SearchFilter narrows a task search. Nil fields match everything.
type SearchFilter struct {
	ProjectID  *uuid.UUID
	Status     *Status
	AssigneeID *uuid.UUID
}

// Repository defines the persistence interface for tasks
type Repository interface {
	// Create persists a new task
	Create(ctx context.Context, t *Task) error

	// Update persists changes to an existing task
	Update(ctx context.Context, t *Task) error

	// Delete removes a task by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID retrieves a task by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindByProjectID retrieves all tasks belonging to a project
	FindByProjectID(ctx context.Context, projectID uuid.UUID) ([]*Task, error)

	// FindByAssigneeID retrieves all tasks assigned to a user
	FindByAssigneeID(ctx context.Context, assigneeID uuid.UUID) ([]*Task, error)

	// Search retrieves tasks matching the filter
	Search(ctx context.Context, filter SearchFilter) ([]*Task, error)

	// AddHistory persists history records for a task
	AddHistory(ctx context.Context, records ...*History) error

	// FindHistory retrieves history records for a task, newest first
	FindHistory(ctx context.Context, taskID uuid.UUID) ([]*History, error)
}
