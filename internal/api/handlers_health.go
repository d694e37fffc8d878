// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string           `json:"status"`
	Version           string           `json:"version"`
	DatabaseConnected bool             `json:"database_connected"`
	Uptime            float64          `json:"uptime"`
	Ingestion         *IngestionHealth `json:"ingestion,omitempty"`
	Cache             *CacheHealth     `json:"cache,omitempty"`
}

// IngestionHealth summarizes the ingestion loops.
type IngestionHealth struct {
	VesselID      string `json:"vessel_id"`
	Running       bool   `json:"running"`
	StreamEnabled bool   `json:"stream_enabled"`
	StreamState   string `json:"stream_state,omitempty"`
	PollerEnabled bool   `json:"poller_enabled"`
}

// CacheHealth summarizes the in-memory window.
type CacheHealth struct {
	Samples     int        `json:"samples"`
	Generation  uint64     `json:"generation"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

// Health reports overall status. The service is "degraded" when the store
// is unreachable or ingestion is not running. Always 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if !dbConnected {
		health.Status = "degraded"
	}

	if h.ingestion != nil {
		st := h.ingestion.Status()
		health.Ingestion = &IngestionHealth{
			VesselID:      st.VesselID,
			Running:       st.Running,
			StreamEnabled: st.StreamEnabled,
			StreamState:   st.StreamState,
			PollerEnabled: st.PollerEnabled,
		}
		if !st.Running {
			health.Status = "degraded"
		}
	}

	if h.cache != nil {
		ch := &CacheHealth{
			Samples:    h.cache.Len(),
			Generation: h.cache.Generation(),
		}
		if at := h.cache.RefreshedAt(); !at.IsZero() {
			ch.RefreshedAt = &at
		}
		health.Cache = ch
	}

	WriteSuccess(w, r, health)
}

// HealthLive is the liveness probe: 200 while the process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe: 200 when the store answers a ping,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
	}

	NewResponseWriter(w, r).WithStatus(statusCode, dbConnected, map[string]interface{}{
		"database_connected": dbConnected,
		"ready_to_serve":     dbConnected,
		"uptime":             time.Since(h.startTime).Seconds(),
	}, nil)
}
