package user

import (
	"strings"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// User is the user aggregate root. User mutations do not publish events;
// user state is read by other services through synchronous lookups.
type User struct {
	shared.BaseAggregateRoot
	Username     string      `gorm:"size:100;not null"`
	Email        string      `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string      `gorm:"size:255;not null"`
	Role         shared.Role `gorm:"size:32;not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with an already-hashed password
func NewUser(username, email, passwordHash string, role shared.Role) (*User, error) {
	if username == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "username is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "password hash is required")
	}
	if !shared.ValidRole(role) {
		return nil, shared.NewDomainError("INVALID_INPUT", "role must be one of ADMIN, PROJECT_MANAGER, TEAM_MEMBER")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             strings.ToLower(email),
		PasswordHash:      passwordHash,
		Role:              role,
	}, nil
}

// Update changes the user's profile fields
func (u *User) Update(username, email string, role shared.Role) error {
	if username == "" {
		return shared.NewDomainError("INVALID_INPUT", "username is required")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if !shared.ValidRole(role) {
		return shared.NewDomainError("INVALID_INPUT", "role must be one of ADMIN, PROJECT_MANAGER, TEAM_MEMBER")
	}

	u.Username = username
	u.Email = strings.ToLower(email)
	u.Role = role
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_INPUT", "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return shared.NewDomainError("INVALID_INPUT", "email address is malformed")
	}
	return nil
}
