package team

import (
	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Team is the team aggregate root
type Team struct {
	shared.BaseAggregateRoot
	Name        string       `gorm:"size:255;not null"`
	Description string       `gorm:"type:text"`
	Members     []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// TeamMember links a user to a team
type TeamMember struct {
	TeamID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName specifies the table name for Team
func (Team) TableName() string {
	return "teams"
}

// TableName specifies the table name for TeamMember
func (TeamMember) TableName() string {
	return "team_members"
}

// NewTeam creates a new team and records the creation event
func NewTeam(name, description string, actor shared.Caller) (*Team, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	t := &Team{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
	}
	t.AddDomainEvent(NewTeamCreatedEvent(t, actor.UserID))
	return t, nil
}

// Update changes the team's mutable fields and records an update event
func (t *Team) Update(name, description string, actor shared.Caller) error {
	if err := validateName(name); err != nil {
		return err
	}
	t.Name = name
	t.Description = description
	t.AddDomainEvent(NewTeamUpdatedEvent(t, actor.UserID))
	return nil
}

// AddMember adds a user to the team and records the membership event
func (t *Team) AddMember(userID uuid.UUID, actor shared.Caller) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "user id is required")
	}
	if t.HasMember(userID) {
		return shared.NewDomainError("ALREADY_EXISTS", "user is already a member of this team")
	}
	t.Members = append(t.Members, TeamMember{TeamID: t.ID, UserID: userID})
	t.AddDomainEvent(NewMemberAddedEvent(t, userID, actor.UserID))
	return nil
}

// RemoveMember removes a user from the team and records the removal event
func (t *Team) RemoveMember(userID uuid.UUID, actor shared.Caller) error {
	for i, m := range t.Members {
		if m.UserID == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			t.AddDomainEvent(NewMemberRemovedEvent(t, userID, actor.UserID))
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "user is not a member of this team")
}

// HasMember reports whether the given user is a member of the team
func (t *Team) HasMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the IDs of all team members
func (t *Team) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// MarkDeleted records the deletion event prior to removal
func (t *Team) MarkDeleted(actor shared.Caller) {
	t.AddDomainEvent(NewTeamDeletedEvent(t, actor.UserID))
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "team name is required")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_INPUT", "team name must not exceed 255 characters")
	}
	return nil
}
