package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// Repository defines the persistence interface for users
type Repository interface {
	// Create persists a new user
	Create(ctx context.Context, u *User) error

	// Update persists changes to an existing user
	Update(ctx context.Context, u *User) error

	// Delete removes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail retrieves a user by email (case-insensitive)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByRole retrieves all users with the given role; a nil role
	// retrieves every user
	FindByRole(ctx context.Context, role *shared.Role) ([]*User, error)

	// ExistsByEmail reports whether a user with the given email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
