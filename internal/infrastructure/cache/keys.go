package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Cache key builders. Single entities use "{kind}:{id}", relation-scoped
// lists use "{kind}s:{relation}:{id}", and searches encode every parameter
// positionally with the literal "all" standing in for an absent filter, so
// the same logical query always maps to the same key.

// AllToken marks an absent search parameter in a cache key
const AllToken = "all"

func ProjectKey(id uuid.UUID) string {
	return fmt.Sprintf("project:%s", id)
}

func ProjectsByManagerKey(managerID uuid.UUID) string {
	return fmt.Sprintf("projects:manager:%s", managerID)
}

func ProjectsByTeamKey(teamID uuid.UUID) string {
	return fmt.Sprintf("projects:team:%s", teamID)
}

func ProjectSearchKey(name, status string) string {
	return fmt.Sprintf("projects:search:name:%s:status:%s", orAll(name), orAll(status))
}

func TaskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id)
}

func TasksByProjectKey(projectID uuid.UUID) string {
	return fmt.Sprintf("tasks:project:%s", projectID)
}

func TasksByAssigneeKey(assigneeID uuid.UUID) string {
	return fmt.Sprintf("tasks:assignee:%s", assigneeID)
}

func TaskSearchKey(projectID, status, assigneeID string) string {
	return fmt.Sprintf("tasks:search:project:%s:status:%s:assignee:%s",
		orAll(projectID), orAll(status), orAll(assigneeID))
}

func TeamKey(id uuid.UUID) string {
	return fmt.Sprintf("team:%s", id)
}

func TeamsAllKey() string {
	return "teams:all"
}

func TeamsByUserKey(userID uuid.UUID) string {
	return fmt.Sprintf("teams:user:%s", userID)
}

func TeamMembersKey(teamID uuid.UUID) string {
	return fmt.Sprintf("team:members:%s", teamID)
}

func UserKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func UserByEmailKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

func UsersByRoleKey(role string) string {
	return fmt.Sprintf("users:role:%s", orAll(role))
}

func orAll(v string) string {
	if v == "" {
		return AllToken
	}
	return v
}
