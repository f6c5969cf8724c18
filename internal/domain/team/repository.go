package team

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for teams
type Repository interface {
	// Create persists a new team
	Create(ctx context.Context, t *Team) error

	// Update persists changes to an existing team
	Update(ctx context.Context, t *Team) error

	// Delete removes a team by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID retrieves a team by its ID, including members
	FindByID(ctx context.Context, id uuid.UUID) (*Team, error)

	// FindAll retrieves all teams
	FindAll(ctx context.Context) ([]*Team, error)

	// FindByUserID retrieves all teams the given user belongs to
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Team, error)

	// AddMember persists a team membership
	AddMember(ctx context.Context, m TeamMember) error

	// RemoveMember removes a team membership
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error

	// HasMember reports whether a user is a member of a team
	HasMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}
