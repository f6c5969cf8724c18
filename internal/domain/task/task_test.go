package task

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskfabric/backend/internal/domain/shared"
)

func memberCaller() shared.Caller {
	return shared.Caller{UserID: uuid.New(), Role: shared.RoleTeamMember}
}

func TestNewTask(t *testing.T) {
	projectID := uuid.New()
	assignee := uuid.New()
	actor := memberCaller()

	task, err := NewTask(projectID, "Fix login redirect", "Users land on 404 after login", StatusToDo, &assignee, actor)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, projectID, task.ProjectID)
	assert.Equal(t, StatusToDo, task.Status)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, assignee, *task.AssigneeID)

	events := task.GetDomainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(*TaskCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, TopicTaskCreated, created.Topic())
	assert.Equal(t, projectID, created.ProjectID)
	assert.Equal(t, actor.UserID, created.ActorID)
}

func TestNewTask_InvalidStatus(t *testing.T) {
	_, err := NewTask(uuid.New(), "Fix login redirect", "", Status("Blocked"), nil, memberCaller())
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
}

func TestNewTask_MissingProject(t *testing.T) {
	_, err := NewTask(uuid.Nil, "Fix login redirect", "", StatusToDo, nil, memberCaller())
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestTask_ApplyUpdate_TracksChanges(t *testing.T) {
	task, err := NewTask(uuid.New(), "Fix login redirect", "desc", StatusToDo, nil, memberCaller())
	require.NoError(t, err)
	task.ClearDomainEvents()

	assignee := uuid.New()
	changes, err := task.ApplyUpdate("Fix login flow", "desc", StatusInProgress, &assignee, memberCaller())
	require.NoError(t, err)

	require.Len(t, changes, 3)
	assert.Contains(t, changes[0], "Title changed")
	assert.Contains(t, changes[1], "Status changed from 'ToDo' to 'InProgress'")
	assert.Contains(t, changes[2], "Assignee changed from 'unassigned'")

	events := task.GetDomainEvents()
	require.Len(t, events, 1)
	updated, ok := events[0].(*TaskUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, changes, updated.Changes)
}

func TestTask_ApplyUpdate_NoChanges(t *testing.T) {
	assignee := uuid.New()
	task, err := NewTask(uuid.New(), "Fix login redirect", "desc", StatusToDo, &assignee, memberCaller())
	require.NoError(t, err)
	task.ClearDomainEvents()

	same := assignee
	changes, err := task.ApplyUpdate("Fix login redirect", "desc", StatusToDo, &same, memberCaller())
	require.NoError(t, err)

	assert.Empty(t, changes)
	assert.Empty(t, task.GetDomainEvents(), "no-op update must not record an event")
}

func TestTask_UpdateStatus(t *testing.T) {
	task, err := NewTask(uuid.New(), "Fix login redirect", "", StatusToDo, nil, memberCaller())
	require.NoError(t, err)
	task.ClearDomainEvents()

	actor := memberCaller()
	require.NoError(t, task.UpdateStatus(StatusDone, actor))
	assert.Equal(t, StatusDone, task.Status)

	events := task.GetDomainEvents()
	require.Len(t, events, 1)
	statusEvent, ok := events[0].(*TaskStatusUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusToDo, statusEvent.OldStatus)
	assert.Equal(t, StatusDone, statusEvent.NewStatus)
	assert.Equal(t, actor.UserID, statusEvent.ActorID)
}

func TestTask_UpdateStatus_Invalid(t *testing.T) {
	task, err := NewTask(uuid.New(), "Fix login redirect", "", StatusToDo, nil, memberCaller())
	require.NoError(t, err)

	err = task.UpdateStatus(Status("Archived"), memberCaller())
	require.Error(t, err)
	assert.Equal(t, StatusToDo, task.Status)
}

func TestNewHistory(t *testing.T) {
	taskID := uuid.New()
	userID := uuid.New()

	h := NewHistory(taskID, userID, "Status changed from 'ToDo' to 'Done'")
	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.Equal(t, taskID, h.TaskID)
	assert.Equal(t, userID, h.ModifiedBy)
	assert.False(t, h.ModifiedAt.IsZero())
}
