package task

import (
	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Event topics for the task aggregate
const (
	TopicTaskCreated       = "task.created"
	TopicTaskUpdated       = "task.updated"
	TopicTaskStatusUpdated = "task.status.updated"
)

const aggregateType = "Task"

// TaskCreatedEvent is published when a task is created
type TaskCreatedEvent struct {
	shared.BaseDomainEvent
	TaskID     uuid.UUID  `json:"task_id"`
	ProjectID  uuid.UUID  `json:"project_id"`
	Title      string     `json:"title"`
	Status     Status     `json:"status"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	ActorID    uuid.UUID  `json:"actor_id"`
}

// NewTaskCreatedEvent creates a new task created event
func NewTaskCreatedEvent(t *Task, actorID uuid.UUID) *TaskCreatedEvent {
	return &TaskCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicTaskCreated, aggregateType, t.ID),
		TaskID:          t.ID,
		ProjectID:       t.ProjectID,
		Title:           t.Title,
		Status:          t.Status,
		AssigneeID:      t.AssigneeID,
		ActorID:         actorID,
	}
}

// TaskUpdatedEvent is published when a task's fields change. Changes lists
// a human-readable description per changed field; the event is not emitted
// for no-op updates.
type TaskUpdatedEvent struct {
	shared.BaseDomainEvent
	TaskID    uuid.UUID `json:"task_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Changes   []string  `json:"changes"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewTaskUpdatedEvent creates a new task updated event
func NewTaskUpdatedEvent(t *Task, changes []string, actorID uuid.UUID) *TaskUpdatedEvent {
	return &TaskUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicTaskUpdated, aggregateType, t.ID),
		TaskID:          t.ID,
		ProjectID:       t.ProjectID,
		Changes:         changes,
		ActorID:         actorID,
	}
}

// TaskStatusUpdatedEvent is published when a task's status changes
type TaskStatusUpdatedEvent struct {
	shared.BaseDomainEvent
	TaskID    uuid.UUID `json:"task_id"`
	ProjectID uuid.UUID `json:"project_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewTaskStatusUpdatedEvent creates a new task status updated event
func NewTaskStatusUpdatedEvent(t *Task, oldStatus Status, actorID uuid.UUID) *TaskStatusUpdatedEvent {
	return &TaskStatusUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicTaskStatusUpdated, aggregateType, t.ID),
		TaskID:          t.ID,
		ProjectID:       t.ProjectID,
		OldStatus:       oldStatus,
		NewStatus:       t.Status,
		ActorID:         actorID,
	}
}
