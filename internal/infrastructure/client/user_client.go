package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPUserLookup implements UserLookup over the user service's internal API
type HTTPUserLookup struct {
	httpLookup
}

var _ UserLookup = (*HTTPUserLookup)(nil)

// NewHTTPUserLookup creates a user lookup client.
// baseURL points at the user service, e.g. "http://usersvc:8084".
func NewHTTPUserLookup(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPUserLookup {
	return &HTTPUserLookup{httpLookup: newHTTPLookup(baseURL, timeout, logger)}
}

// Exists reports whether a user with the given ID exists.
// The endpoint answers with a bare JSON boolean.
func (c *HTTPUserLookup) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := c.getJSON(ctx, fmt.Sprintf("/internal/exists/%s", id), &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FindByID retrieves a user snapshot
func (c *HTTPUserLookup) FindByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error) {
	var snapshot UserSnapshot
	if err := c.getJSON(ctx, fmt.Sprintf("/internal/%s", id), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
