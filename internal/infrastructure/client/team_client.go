package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPTeamLookup implements TeamLookup over the team service's internal API
type HTTPTeamLookup struct {
	httpLookup
}

var _ TeamLookup = (*HTTPTeamLookup)(nil)

// NewHTTPTeamLookup creates a team lookup client.
// baseURL points at the team service, e.g. "http://teamsvc:8083".
func NewHTTPTeamLookup(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPTeamLookup {
	return &HTTPTeamLookup{httpLookup: newHTTPLookup(baseURL, timeout, logger)}
}

// Exists reports whether a team with the given ID exists.
// The endpoint answers with a bare JSON boolean.
func (c *HTTPTeamLookup) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := c.getJSON(ctx, fmt.Sprintf("/internal/exists/%s", id), &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// HasMember reports whether the user is a member of the team.
// The endpoint answers with a bare JSON boolean.
func (c *HTTPTeamLookup) HasMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var isMember bool
	if err := c.getJSON(ctx, fmt.Sprintf("/internal/%s/members/%s", teamID, userID), &isMember); err != nil {
		return false, err
	}
	return isMember, nil
}

// TeamsForUser retrieves snapshots of every team the user belongs to
func (c *HTTPTeamLookup) TeamsForUser(ctx context.Context, userID uuid.UUID) ([]TeamSnapshot, error) {
	var teams []TeamSnapshot
	if err := c.getJSON(ctx, fmt.Sprintf("/internal/user/%s", userID), &teams); err != nil {
		return nil, err
	}
	return teams, nil
}
