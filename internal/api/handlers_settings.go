// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package api

import (
	"net/http"

	"github.com/tomtom215/vesseltrack/internal/models"
)

// Settings returns the designated vessel so clients know which MMSI the
// default position routes serve.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, models.VesselSettings{
		VesselMMSI:      h.vessel.MMSI,
		VesselName:      h.vessel.Name,
		CruiseStartDate: h.vessel.CruiseStartDate,
	})
}

// Root identifies the service.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]string{
		"name":    "vesseltrack",
		"version": h.version,
	})
}
