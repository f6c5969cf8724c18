package project

import (
	"context"

	"github.com/google/uuid"
)

// SearchFilter narrows a project search. Nil fields match everything.
type SearchFilter struct {
	Name   *string
	Status *Status
}

// Repository defines the persistence interface for projects
type Repository interface {
	// Create persists a new project
	Create(ctx context.Context, p *Project) error

	// Update persists changes to an existing project
	Update(ctx context.Context, p *Project) error

	// Delete removes a project by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID retrieves a project by its ID, including assigned teams
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByManagerID retrieves all projects managed by the given user
	FindByManagerID(ctx context.Context, managerID uuid.UUID) ([]*Project, error)

	// FindByTeamID retrieves all projects a team is assigned to
	FindByTeamID(ctx context.Context, teamID uuid.UUID) ([]*Project, error)

	// Search retrieves projects matching the filter
	Search(ctx context.Context, filter SearchFilter) ([]*Project, error)

	// AddTeam persists a project-team assignment
	AddTeam(ctx context.Context, link ProjectTeam) error
}
