// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/models"
	syncpkg "github.com/tomtom215/vesseltrack/internal/sync"
)

// PositionReader answers the two read queries of the API. Satisfied by
// *cache.ReadThrough.
type PositionReader interface {
	Latest(ctx context.Context, vesselID string) (models.PositionSample, error)
	Range(ctx context.Context, vesselID string, from, to *time.Time) ([]models.PositionSample, error)
}

// Pinger checks store connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IngestionStatusProvider reports the state of the ingestion loops.
type IngestionStatusProvider interface {
	Status() syncpkg.ManagerStatus
}

// CacheStatusProvider reports the state of the in-memory window.
type CacheStatusProvider interface {
	Len() int
	Generation() uint64
	RefreshedAt() time.Time
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, setters (this file)
//   - handlers_position.go: latest and range position endpoints
//   - handlers_settings.go: vessel settings endpoint
//   - handlers_health.go: health and probe endpoints
type Handler struct {
	reader    PositionReader
	db        Pinger
	vessel    config.VesselConfig
	ingestion IngestionStatusProvider
	cache     CacheStatusProvider
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// reader serves position queries, db backs the readiness probe and vessel
// names the designated vessel used when a request omits the MMSI.
//
// Example:
//
//	handler := api.NewHandler(cache.NewReadThrough(window, db), db, cfg.Vessel)
//	router := api.NewRouter(handler, api.NewChiMiddleware(mwCfg))
//	http.ListenAndServe(cfg.Server.Addr(), router.Setup())
func NewHandler(reader PositionReader, db Pinger, vessel config.VesselConfig) *Handler {
	return &Handler{
		reader:    reader,
		db:        db,
		vessel:    vessel,
		version:   "dev",
		startTime: time.Now(),
	}
}

// SetIngestionStatus attaches the ingestion manager reported by /health.
func (h *Handler) SetIngestionStatus(p IngestionStatusProvider) {
	h.ingestion = p
}

// SetCacheStatus attaches the position cache reported by /health.
func (h *Handler) SetCacheStatus(p CacheStatusProvider) {
	h.cache = p
}

// SetVersion sets the build version reported by / and /health.
func (h *Handler) SetVersion(v string) {
	if v != "" {
		h.version = v
	}
}

// sanitizeLogValue escapes control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
