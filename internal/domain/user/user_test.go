package user

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskfabric/backend/internal/domain/shared"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice", "Alice@Example.com", "$2a$10$hash", shared.RoleProjectManager)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email, "email must be normalized to lowercase")
	assert.Equal(t, shared.RoleProjectManager, u.Role)
}

func TestNewUser_InvalidEmail(t *testing.T) {
	cases := []string{"", "not-an-email", "@example.com", "alice@", "alice@nodot"}
	for _, email := range cases {
		_, err := NewUser("alice", email, "$2a$10$hash", shared.RoleTeamMember)
		require.Error(t, err, "email %q should be rejected", email)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	}
}

func TestNewUser_InvalidRole(t *testing.T) {
	_, err := NewUser("alice", "alice@example.com", "$2a$10$hash", shared.Role("SUPERUSER"))
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestUser_Update(t *testing.T) {
	u, err := NewUser("alice", "alice@example.com", "$2a$10$hash", shared.RoleTeamMember)
	require.NoError(t, err)

	require.NoError(t, u.Update("alice2", "Alice2@Example.com", shared.RoleProjectManager))
	assert.Equal(t, "alice2", u.Username)
	assert.Equal(t, "alice2@example.com", u.Email)
	assert.Equal(t, shared.RoleProjectManager, u.Role)
}
