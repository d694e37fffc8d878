// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

// Package validation validates read API requests using go-playground/validator v10.
//
// A singleton validator is configured once with:
//   - the mmsi tag (exactly nine digits)
//   - a struct rule on PositionRangeRequest rejecting to_ts before from_ts
//   - field names taken from the query tag, so errors name the parameter
//     the client actually sent
//
// # Usage
//
//	req := validation.PositionRangeRequest{VesselID: mmsi, From: from, To: to}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Both range bounds are optional and inclusive; equal bounds are valid.
package validation
