package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// DefaultLookupTimeout bounds every remote lookup so an unresponsive peer
// cannot stall a mutation indefinitely.
const DefaultLookupTimeout = 5 * time.Second

// httpLookup is the shared transport for all lookup clients
type httpLookup struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func newHTTPLookup(baseURL string, timeout time.Duration, logger *zap.Logger) httpLookup {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return httpLookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// getJSON performs a GET and decodes the response body into dest.
// A transport failure maps to shared.ErrUpstreamUnavailable; a 404 maps to
// shared.ErrNotFound; any other non-200 status is treated as upstream
// unavailability since no trustworthy answer was produced.
func (h httpLookup) getJSON(ctx context.Context, path string, dest any) error {
	url := h.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("remote lookup transport failure",
			zap.String("url", url),
			zap.Error(err))
		return shared.ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return shared.ErrUpstreamUnavailable
		}
		if err := json.Unmarshal(body, dest); err != nil {
			h.logger.Warn("remote lookup returned malformed body",
				zap.String("url", url),
				zap.Error(err))
			return shared.ErrUpstreamUnavailable
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	default:
		h.logger.Warn("remote lookup returned unexpected status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return shared.ErrUpstreamUnavailable
	}
}
