package team

import (
	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Event topics for the team aggregate
const (
	TopicTeamCreated   = "team.created"
	TopicTeamUpdated   = "team.updated"
	TopicTeamDeleted   = "team.deleted"
	TopicMemberAdded   = "member.added"
	TopicMemberRemoved = "member.removed"
)

const aggregateType = "Team"

// TeamCreatedEvent is published when a team is created
type TeamCreatedEvent struct {
	shared.BaseDomainEvent
	TeamID  uuid.UUID `json:"team_id"`
	Name    string    `json:"name"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewTeamCreatedEvent creates a new team created event
func NewTeamCreatedEvent(t *Team, actorID uuid.UUID) *TeamCreatedEvent {
	return &TeamCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicTeamCreated, aggregateType, t.ID),
		TeamID:          t.ID,
		Name:            t.Name,
		ActorID:         actorID,
	}
}

// TeamUpdatedEvent is published when a team's fields change
type TeamUpdatedEvent struct {
	shared.BaseDomainEvent
	TeamID  uuid.UUID `json:"team_id"`
	Name    string    `json:"name"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewTeamUpdatedEvent creates a new team updated event
func NewTeamUpdatedEvent(t *Team, actorID uuid.UUID) *TeamUpdatedEvent {
	return &TeamUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicTeamUpdated, aggregateType, t.ID),
		TeamID:          t.ID,
		Name:            t.Name,
		ActorID:         actorID,
	}
}

// TeamDeletedEvent is published when a team is deleted
type TeamDeletedEvent struct {
	shared.BaseDomainEvent
	TeamID  uuid.UUID `json:"team_id"`
	Name    string    `json:"name"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewTeamDeletedEvent creates a new team deleted event
func NewTeamDeletedEvent(t *Team, actorID uuid.UUID) *TeamDeletedEvent {
	return &TeamDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicTeamDeleted, aggregateType, t.ID),
		TeamID:          t.ID,
		Name:            t.Name,
		ActorID:         actorID,
	}
}

// MemberAddedEvent is published when a user joins a team
type MemberAddedEvent struct {
	shared.BaseDomainEvent
	TeamID  uuid.UUID `json:"team_id"`
	UserID  uuid.UUID `json:"user_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewMemberAddedEvent creates a new member added event
func NewMemberAddedEvent(t *Team, userID, actorID uuid.UUID) *MemberAddedEvent {
	return &MemberAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicMemberAdded, aggregateType, t.ID),
		TeamID:          t.ID,
		UserID:          userID,
		ActorID:         actorID,
	}
}

// MemberRemovedEvent is published when a user leaves a team
type MemberRemovedEvent struct {
	shared.BaseDomainEvent
	TeamID  uuid.UUID `json:"team_id"`
	UserID  uuid.UUID `json:"user_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewMemberRemovedEvent creates a new member removed event
func NewMemberRemovedEvent(t *Team, userID, actorID uuid.UUID) *MemberRemovedEvent {
	return &MemberRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(TopicMemberRemoved, aggregateType, t.ID),
		TeamID:          t.ID,
		UserID:          userID,
		ActorID:         actorID,
	}
}
