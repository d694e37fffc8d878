// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
track_client.go - Historical Track Snapshot Client

The track endpoint returns the recent track of one vessel as an obfuscated
binary blob (see internal/track). The client issues a single GET per poll
cycle, so the outbound limiter only matters for manual poll-once runs and
restarts that would otherwise hit the endpoint back to back.

Resilience Mechanisms:
  - Rate Limiting: golang.org/x/time/rate, one request per RateLimitInterval
  - Circuit Breaker: see CircuitBreakerTrackClient
  - Response cap: bodies beyond maxSnapshotSize are rejected
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/track"
)

// maxSnapshotSize caps the snapshot body (roughly 260k records).
const maxSnapshotSize = 4 << 20

// maxErrorBodySize limits how much of a failed response is kept for the error.
const maxErrorBodySize = 1024

// TrackFetcher retrieves the current track snapshot of a vessel.
type TrackFetcher interface {
	FetchTrack(ctx context.Context, vesselID string) ([]track.Point, error)
}

// TrackClient fetches snapshots over HTTP.
type TrackClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTrackClient creates a client for the configured endpoint.
func NewTrackClient(cfg *config.TrackConfig) *TrackClient {
	every := rate.Inf
	if cfg.RateLimitInterval > 0 {
		every = rate.Every(cfg.RateLimitInterval)
	}
	return &TrackClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(every, 1),
	}
}

// FetchTrack downloads and decodes the snapshot for vesselID.
func (c *TrackClient) FetchTrack(ctx context.Context, vesselID string) ([]track.Point, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError("fetch_track", fmt.Errorf("rate limiter: %w", err))
	}

	endpoint := c.baseURL + "/" + url.PathEscape(vesselID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, protocolError("fetch_track", fmt.Errorf("build request: %w", err))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // endpoint comes from validated config
	if err != nil {
		return nil, transportError("fetch_track", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, transportError("fetch_track",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize+1))
	if err != nil {
		return nil, transportError("fetch_track", fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxSnapshotSize {
		return nil, protocolError("fetch_track", errors.New("snapshot exceeds size limit"))
	}

	points := track.Decode(body)
	logging.Debug().
		Str("vessel_id", vesselID).
		Int("bytes", len(body)).
		Int("points", len(points)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched track snapshot")

	return points, nil
}
