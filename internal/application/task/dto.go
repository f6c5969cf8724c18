package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/task"
)

// CreateTaskRequest is the input for creating a task
type CreateTaskRequest struct {
	ProjectID   uuid.UUID  `json:"project_id" binding:"required"`
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"required"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// UpdateTaskRequest is the input for updating a task
type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"required"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// UpdateStatusRequest is the input for a task status transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SearchRequest narrows a task search; empty fields match everything
type SearchRequest struct {
	ProjectID  string `form:"project_id"`
	Status     string `form:"status"`
	AssigneeID string `form:"assignee_id"`
}

// TaskResponse is the public view of a task
type TaskResponse struct {
	ID          uuid.UUID   `json:"id"`
	ProjectID   uuid.UUID   `json:"project_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      task.Status `json:"status"`
	AssigneeID  *uuid.UUID  `json:"assignee_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HistoryResponse is one recorded change to a task
type HistoryResponse struct {
	ID                uuid.UUID `json:"id"`
	TaskID            uuid.UUID `json:"task_id"`
	ModifiedBy        uuid.UUID `json:"modified_by"`
	ChangeDescription string    `json:"change_description"`
	ModifiedAt        time.Time `json:"modified_at"`
}

// ToTaskResponse converts a domain task to its response representation
func ToTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTaskResponses converts a slice of domain tasks
func ToTaskResponses(tasks []*task.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}

// ToHistoryResponses converts a slice of domain history records
func ToHistoryResponses(records []*task.History) []HistoryResponse {
	out := make([]HistoryResponse, len(records))
	for i, h := range records {
		out[i] = HistoryResponse{
			ID:                h.ID,
			TaskID:            h.TaskID,
			ModifiedBy:        h.ModifiedBy,
			ChangeDescription: h.ChangeDescription,
			ModifiedAt:        h.ModifiedAt,
		}
	}
	return out
}
