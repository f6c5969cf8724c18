package project

import (
	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Event topics for the project aggregate
const (
	TopicProjectCreated       = "project.created"
	TopicProjectUpdated       = "project.updated"
	TopicProjectDeleted       = "project.deleted"
	TopicProjectTeamAdded     = "project.team.added"
	TopicProjectStatusUpdated = "project.status.updated"
)

const aggregateType = "Project"

// ProjectCreatedEvent is published when a project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID        uuid.UUID `json:"project_id"`
	Name             string    `json:"name"`
	Status           Status    `json:"status"`
	ProjectManagerID uuid.UUID `json:"project_manager_id"`
	ActorID          uuid.UUID `json:"actor_id"`
}

// NewProjectCreatedEvent creates a new project created event
func NewProjectCreatedEvent(p *Project, actorID uuid.UUID) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(TopicProjectCreated, aggregateType, p.ID),
		ProjectID:        p.ID,
		Name:             p.Name,
		Status:           p.Status,
		ProjectManagerID: p.ProjectManagerID,
		ActorID:          actorID,
	}
}

// ProjectUpdatedEvent is published when a project's fields change
type ProjectUpdatedEvent struct {
	shared.BaseDomainEvent
	ProjectID        uuid.UUID `json:"project_id"`
	Name             string    `json:"name"`
	Status           Status    `json:"status"`
	ProjectManagerID uuid.UUID `json:"project_manager_id"`
	ActorID          uuid.UUID `json:"actor_id"`
}

// NewProjectUpdatedEvent creates a new project updated event
func NewProjectUpdatedEvent(p *Project, actorID uuid.UUID) *ProjectUpdatedEvent {
	return &ProjectUpdatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(TopicProjectUpdated, aggregateType, p.ID),
		ProjectID:        p.ID,
		Name:             p.Name,
		Status:           p.Status,
		ProjectManagerID: p.ProjectManagerID,
		ActorID:          actorID,
	}
}

// ProjectDeletedEvent is published when a project is deleted
type ProjectDeletedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewProjectDeletedEvent creates a new project deleted event
func NewProjectDeletedEvent(p *Project, actorID uuid.UUID) *ProjectDeletedEvent {
	return &ProjectDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicProjectDeleted, aggregateType, p.ID),
		ProjectID:       p.ID,
		Name:            p.Name,
		ActorID:         actorID,
	}
}

// ProjectTeamAddedEvent is published when a team is assigned to a project
type ProjectTeamAddedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	TeamID    uuid.UUID `json:"team_id"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewProjectTeamAddedEvent creates a new project team added event
func NewProjectTeamAddedEvent(p *Project, teamID, actorID uuid.UUID) *ProjectTeamAddedEvent {
	return &ProjectTeamAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicProjectTeamAdded, aggregateType, p.ID),
		ProjectID:       p.ID,
		TeamID:          teamID,
		ActorID:         actorID,
	}
}

// ProjectStatusUpdatedEvent is published when a project's status changes
type ProjectStatusUpdatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewProjectStatusUpdatedEvent creates a new project status updated event
func NewProjectStatusUpdatedEvent(p *Project, oldStatus Status, actorID uuid.UUID) *ProjectStatusUpdatedEvent {
	return &ProjectStatusUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicProjectStatusUpdated, aggregateType, p.ID),
		ProjectID:       p.ID,
		OldStatus:       oldStatus,
		NewStatus:       p.Status,
		ActorID:         actorID,
	}
}
