package shared

import "github.com/google/uuid"

// Role is the coarse-grained role a caller acts under.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleTeamMember     Role = "TEAM_MEMBER"
)

// ValidRole reports whether r is one of the known roles
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleTeamMember:
		return true
	default:
		return false
	}
}

// Caller identifies who is performing an operation. It is threaded
// explicitly through every application-service call; services never read
// identity from ambient request state.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller has the ADMIN role
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsProjectManager reports whether the caller has the PROJECT_MANAGER role
func (c Caller) IsProjectManager() bool {
	return c.Role == RoleProjectManager
}
