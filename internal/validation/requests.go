// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package validation

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// LatestPositionRequest is the validated form of GET /position/latest.
type LatestPositionRequest struct {
	VesselID string `query:"mmsi" validate:"required,mmsi"`
}

// PositionRangeRequest is the validated form of GET /position/range. Both
// bounds are optional and inclusive.
type PositionRangeRequest struct {
	VesselID string     `query:"mmsi" validate:"required,mmsi"`
	From     *time.Time `query:"from_ts"`
	To       *time.Time `query:"to_ts"`
}

// validateMMSI accepts exactly nine ASCII digits.
func validateMMSI(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 9 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validateRangeOrder(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(PositionRangeRequest)
	if !ok || req.From == nil || req.To == nil {
		return
	}
	if req.To.Before(*req.From) {
		sl.ReportError(req.To, "to_ts", "To", "gtefield", "from_ts")
	}
}
