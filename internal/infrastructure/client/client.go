// Package client provides synchronous lookup clients for validating
// references to entities owned by other services. Lookups are bounded by a
// request timeout; a transport-level failure surfaces as
// shared.ErrUpstreamUnavailable and is never conflated with a clean
// "does not exist" answer.
package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// UserSnapshot is the read-only view of a user exposed to other services
type UserSnapshot struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     shared.Role `json:"role"`
}

// UserLookup validates and reads users owned by the user service
type UserLookup interface {
	// Exists reports whether a user with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// FindByID retrieves a user snapshot; shared.ErrNotFound if absent
	FindByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
}

// TeamSnapshot is the read-only view of a team exposed to other services
type TeamSnapshot struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// TeamLookup validates teams and memberships owned by the team service
type TeamLookup interface {
	// Exists reports whether a team with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// HasMember reports whether the user is a member of the team
	HasMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	// TeamsForUser retrieves snapshots of every team the user belongs to
	TeamsForUser(ctx context.Context, userID uuid.UUID) ([]TeamSnapshot, error)
}

// ProjectLookup validates projects owned by the project service
type ProjectLookup interface {
	// Exists reports whether a project with the given ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
