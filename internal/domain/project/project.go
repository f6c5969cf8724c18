package project

import (
	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a project
type Status string

const (
	StatusPlanning   Status = "Planning"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// ValidStatus reports whether s is one of the known project statuses
func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Project is the project aggregate root
type Project struct {
	shared.BaseAggregateRoot
	Name             string        `gorm:"size:255;not null"`
	Description      string        `gorm:"type:text"`
	Status           Status        `gorm:"size:32;not null"`
	ProjectManagerID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Teams            []ProjectTeam `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// ProjectTeam links a project to a team assigned to it
type ProjectTeam struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID    uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// TableName specifies the table name for ProjectTeam
func (ProjectTeam) TableName() string {
	return "project_teams"
}

// NewProject creates a new project and records the creation event
func NewProject(name, description string, status Status, managerID uuid.UUID, actor shared.Caller) (*Project, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if managerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "project manager id is required")
	}

	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Status:            status,
		ProjectManagerID:  managerID,
	}
	p.AddDomainEvent(NewProjectCreatedEvent(p, actor.UserID))
	return p, nil
}

// Update changes the project's mutable fields and records an update event
func (p *Project) Update(name, description string, status Status, managerID uuid.UUID, actor shared.Caller) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateStatus(status); err != nil {
		return err
	}
	if managerID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "project manager id is required")
	}

	p.Name = name
	p.Description = description
	p.Status = status
	p.ProjectManagerID = managerID
	p.AddDomainEvent(NewProjectUpdatedEvent(p, actor.UserID))
	return nil
}

// UpdateStatus transitions the project to a new status and records a
// status event carrying the previous status.
func (p *Project) UpdateStatus(status Status, actor shared.Caller) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	old := p.Status
	p.Status = status
	p.AddDomainEvent(NewProjectStatusUpdatedEvent(p, old, actor.UserID))
	return nil
}

// AddTeam assigns a team to the project and records the assignment event
func (p *Project) AddTeam(teamID uuid.UUID, actor shared.Caller) error {
	if teamID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "team id is required")
	}
	for _, t := range p.Teams {
		if t.TeamID == teamID {
			return shared.NewDomainError("ALREADY_EXISTS", "team is already assigned to this project")
		}
	}
	p.Teams = append(p.Teams, ProjectTeam{ProjectID: p.ID, TeamID: teamID})
	p.AddDomainEvent(NewProjectTeamAddedEvent(p, teamID, actor.UserID))
	return nil
}

// HasTeam reports whether the given team is assigned to the project
func (p *Project) HasTeam(teamID uuid.UUID) bool {
	for _, t := range p.Teams {
		if t.TeamID == teamID {
			return true
		}
	}
	return false
}

// TeamIDs returns the IDs of all teams assigned to the project
func (p *Project) TeamIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Teams))
	for _, t := range p.Teams {
		ids = append(ids, t.TeamID)
	}
	return ids
}

// MarkDeleted records the deletion event prior to removal
func (p *Project) MarkDeleted(actor shared.Caller) {
	p.AddDomainEvent(NewProjectDeletedEvent(p, actor.UserID))
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "project name is required")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_INPUT", "project name must not exceed 255 characters")
	}
	return nil
}

func validateStatus(status Status) error {
	if !ValidStatus(status) {
		return shared.NewDomainError("INVALID_STATUS", "project status must be one of Planning, InProgress, Completed")
	}
	return nil
}
