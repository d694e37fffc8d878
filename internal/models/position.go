// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Position sources.
const (
	SourceStream = "stream" // live AIS feed
	SourceTrack  = "track"  // polled historical track snapshot
)

// PositionSample is one observed position of a vessel at a point in time.
//
// Samples are immutable once constructed. ID is assigned at construction so
// the deduplication pass can address individual rows for deletion even when
// two samples share a timestamp. Timestamp is always normalized to UTC.
//
// Key Fields:
//   - VesselID: MMSI rendered as text
//   - Latitude/Longitude: WGS-84 degrees
//   - SpeedOverGround: knots, non-negative
//   - CourseOverGround: degrees, 360 when the source reports none
//   - Heading: optional true heading (nil when absent, 511 when the source reports none)
//   - NavigationStatus: always set, Undefined when unknown
type PositionSample struct {
	ID               uuid.UUID        `json:"id"`
	VesselID         string           `json:"vessel_id"`
	Latitude         float64          `json:"latitude"`
	Longitude        float64          `json:"longitude"`
	Timestamp        time.Time        `json:"timestamp"`
	SpeedOverGround  float64          `json:"speed_over_ground"`
	CourseOverGround float64          `json:"course_over_ground"`
	Heading          *float64         `json:"heading,omitempty"`
	NavigationStatus NavigationStatus `json:"navigation_status"`
	Source           string           `json:"source"`
	CreatedAt        time.Time        `json:"created_at,omitempty"`
}

// NewPositionSample builds a sample with a fresh ID and the timestamp
// normalized to UTC.
func NewPositionSample(vesselID string, lat, lon float64, ts time.Time, sog, cog float64,
	heading *float64, status NavigationStatus, source string) PositionSample {
	return PositionSample{
		ID:               uuid.New(),
		VesselID:         vesselID,
		Latitude:         lat,
		Longitude:        lon,
		Timestamp:        ts.UTC(),
		SpeedOverGround:  sog,
		CourseOverGround: cog,
		Heading:          heading,
		NavigationStatus: status,
		Source:           source,
	}
}

// SortByTimestamp orders samples ascending by timestamp, keeping the
// relative order of samples with equal timestamps.
func SortByTimestamp(samples []PositionSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// VesselSettings describes the designated vessel for clients of the read API.
type VesselSettings struct {
	VesselMMSI      string `json:"vessel_mmsi"`
	VesselName      string `json:"vessel_name"`
	CruiseStartDate string `json:"cruise_start_date,omitempty"`
}
