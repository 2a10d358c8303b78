package suggestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/tripdeck/tripdeck/internal/types"
)

// Fetcher sends a built query to the POI data source and returns the raw
// result set or a typed failure.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (*types.OverpassResponse, error)
}

var _ Fetcher = (*OverpassClient)(nil)

// OverpassClient talks to the public Overpass interpreter. Overpass is an
// unauthenticated source with no SLA, so every request carries a bounded
// timeout and failures surface as typed errors; it never retries.
type OverpassClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

func NewOverpassClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *OverpassClient {
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &OverpassClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Fetch executes one GET against the interpreter with the query passed as the
// single "data" parameter.
func (c *OverpassClient) Fetch(ctx context.Context, query string) (*types.OverpassResponse, error) {
	params := url.Values{}
	params.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build overpass request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.WarnContext(ctx, "Overpass request timed out", slog.Any("error", err))
			return nil, fmt.Errorf("%w: %v", types.ErrSourceTimeout, err)
		}
		c.logger.WarnContext(ctx, "Overpass request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", types.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.WarnContext(ctx, "Overpass returned error status", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", types.ErrSourceUnreachable, resp.StatusCode)
	}

	// Elements is a pointer so a missing array can be told apart from an
	// empty one; a payload without "elements" is a source-side error and the
	// source's own remark is surfaced when present.
	var payload struct {
		Elements *[]types.OverpassElement `json:"elements"`
		Remark   string                   `json:"remark"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode Overpass response", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedResponse, err)
	}

	if payload.Elements == nil {
		if payload.Remark != "" {
			return nil, fmt.Errorf("%w: %s", types.ErrMalformedResponse, payload.Remark)
		}
		return nil, fmt.Errorf("%w: response has no elements array", types.ErrMalformedResponse)
	}

	return &types.OverpassResponse{Elements: *payload.Elements, Remark: payload.Remark}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
