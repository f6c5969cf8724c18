package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a task
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// ValidStatus reports whether s is one of the known task statuses
func ValidStatus(s Status) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Task is the task aggregate root
type Task struct {
	shared.BaseAggregateRoot
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	Status      Status     `gorm:"size:32;not null"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid;index"`
}

// History records a single change made to a task
type History struct {
	shared.BaseEntity
	TaskID            uuid.UUID `gorm:"type:uuid;not null;index"`
	ModifiedBy        uuid.UUID `gorm:"type:uuid;not null"`
	ChangeDescription string    `gorm:"type:text;not null"`
	ModifiedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TableName specifies the table name for History
func (History) TableName() string {
	return "task_history"
}

// NewTask creates a new task and records the creation event
func NewTask(projectID uuid.UUID, title, description string, status Status, assigneeID *uuid.UUID, actor shared.Caller) (*Task, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "project id is required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	t := &Task{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		Title:             title,
		Description:       description,
		Status:            status,
		AssigneeID:        assigneeID,
	}
	t.AddDomainEvent(NewTaskCreatedEvent(t, actor.UserID))
	return t, nil
}

// ApplyUpdate applies field changes to the task and returns a description of
// each change that was made. An update event is recorded only when at least
// one field actually changed.
func (t *Task) ApplyUpdate(title, description string, status Status, assigneeID *uuid.UUID, actor shared.Caller) ([]string, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	var changes []string
	if t.Title != title {
		changes = append(changes, fmt.Sprintf("Title changed from '%s' to '%s'", t.Title, title))
		t.Title = title
	}
	if t.Description != description {
		changes = append(changes, "Description updated")
		t.Description = description
	}
	if t.Status != status {
		changes = append(changes, fmt.Sprintf("Status changed from '%s' to '%s'", t.Status, status))
		t.Status = status
	}
	if !assigneeEqual(t.AssigneeID, assigneeID) {
		changes = append(changes, fmt.Sprintf("Assignee changed from '%s' to '%s'", formatAssignee(t.AssigneeID), formatAssignee(assigneeID)))
		t.AssigneeID = assigneeID
	}

	if len(changes) > 0 {
		t.AddDomainEvent(NewTaskUpdatedEvent(t, changes, actor.UserID))
	}
	return changes, nil
}

// UpdateStatus transitions the task to a new status and records a status
// event carrying the previous status.
func (t *Task) UpdateStatus(status Status, actor shared.Caller) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	old := t.Status
	t.Status = status
	t.AddDomainEvent(NewTaskStatusUpdatedEvent(t, old, actor.UserID))
	return nil
}

// NewHistory creates a history record for a task change
func NewHistory(taskID, modifiedBy uuid.UUID, changeDescription string) *History {
	return &History{
		BaseEntity:        shared.NewBaseEntity(),
		TaskID:            taskID,
		ModifiedBy:        modifiedBy,
		ChangeDescription: changeDescription,
		ModifiedAt:        time.Now().UTC(),
	}
}

func assigneeEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatAssignee(id *uuid.UUID) string {
	if id == nil {
		return "unassigned"
	}
	return id.String()
}

func validateTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_INPUT", "task title is required")
	}
	if len(title) > 255 {
		return shared.NewDomainError("INVALID_INPUT", "task title must not exceed 255 characters")
	}
	return nil
}

func validateStatus(status Status) error {
	if !ValidStatus(status) {
		return shared.NewDomainError("INVALID_STATUS", "task status must be one of ToDo, InProgress, Done")
	}
	return nil
}
