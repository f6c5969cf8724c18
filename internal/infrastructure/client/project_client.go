package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPProjectLookup implements ProjectLookup over the project service's internal API
type HTTPProjectLookup struct {
	httpLookup
}

var _ ProjectLookup = (*HTTPProjectLookup)(nil)

// NewHTTPProjectLookup creates a project lookup client.
// baseURL points at the project service, e.g. "http://projectsvc:8081".
func NewHTTPProjectLookup(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPProjectLookup {
	return &HTTPProjectLookup{httpLookup: newHTTPLookup(baseURL, timeout, logger)}
}

// Exists reports whether a project with the given ID exists.
// The endpoint answers with a bare JSON boolean.
func (c *HTTPProjectLookup) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := c.getJSON(ctx, fmt.Sprintf("/internal/exists/%s", id), &exists); err != nil {
		return false, err
	}
	return exists, nil
}
