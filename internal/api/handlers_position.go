// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/vesseltrack/internal/cache"
	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/validation"
)

// timeParamLayouts are tried in order. Layouts without a zone are UTC.
var timeParamLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimeParam parses an optional time query parameter. An absent or
// empty value yields nil. Integers are read as unix seconds.
func parseTimeParam(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.Unix(secs, 0).UTC()
		return &t, nil
	}

	// An unescaped "+" in a query arrives as a space.
	if i := strings.IndexByte(raw, 'T'); i >= 0 && strings.Contains(raw[i:], " ") {
		raw = raw[:i] + strings.Replace(raw[i:], " ", "+", 1)
	}

	for _, layout := range timeParamLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be an RFC3339 timestamp, a date or unix seconds", key)
}

// vesselIDParam resolves the vessel for a request: path parameter, then
// the mmsi query parameter, then the configured vessel.
func (h *Handler) vesselIDParam(r *http.Request) string {
	if id := chi.URLParam(r, "mmsi"); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("mmsi")); id != "" {
		return id
	}
	return h.vessel.MMSI
}

func writeValidationError(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Message, apiErr.Details)
}

// LatestPosition returns the newest known position of a vessel.
//
// Routes:
//
//	GET /api/v1/position/latest[?mmsi=]
//	GET /api/v1/position/latest/{mmsi}
//
// Responds 404 when nothing has been recorded for the vessel yet.
func (h *Handler) LatestPosition(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := validation.LatestPositionRequest{VesselID: h.vesselIDParam(r)}
	if verr := validation.ValidateStruct(req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	sample, err := h.reader.Latest(r.Context(), req.VesselID)
	if errors.Is(err, cache.ErrNotFound) {
		rw.NotFound("No position found for vessel " + req.VesselID)
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(sample)
}

// PositionRange returns positions of a vessel between optional inclusive
// bounds, oldest first.
//
// Routes:
//
//	GET /api/v1/position/range[?mmsi=&from_ts=&to_ts=]
//	GET /api/v1/position/range/{mmsi}[?from_ts=&to_ts=]
//
// Responds 404 when no position falls inside the range.
func (h *Handler) PositionRange(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	from, err := parseTimeParam(r, "from_ts")
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "from_ts", "tag": "datetime"})
		return
	}
	to, err := parseTimeParam(r, "to_ts")
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "to_ts", "tag": "datetime"})
		return
	}

	req := validation.PositionRangeRequest{
		VesselID: h.vesselIDParam(r),
		From:     from,
		To:       to,
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		writeValidationError(rw, verr)
		return
	}

	samples, err := h.reader.Range(r.Context(), req.VesselID, req.From, req.To)
	if errors.Is(err, cache.ErrNotFound) {
		logging.Ctx(r.Context()).Debug().
			Str("vessel_id", sanitizeLogValue(req.VesselID)).
			Msg("No positions in requested range")
		rw.NotFound("No positions found for vessel " + req.VesselID + " in the requested range")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	count := len(samples)
	rw.SuccessWithMeta(samples, &APIMeta{Count: &count})
}
