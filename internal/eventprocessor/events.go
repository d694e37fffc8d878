// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// TopicPositionsStored carries PositionsStoredEvent messages.
const TopicPositionsStored = "positions.stored"

// PositionsStoredEvent announces that samples for a vessel were written to
// the store. Count may be zero when a poll cycle completed without new
// samples but still changed the stored history through deduplication.
type PositionsStoredEvent struct {
	SchemaVersion int       `json:"schema_version,omitempty"`
	EventID       string    `json:"event_id"`
	VesselID      string    `json:"vessel_id"`
	Count         int       `json:"count"`
	Source        string    `json:"source"`
	StoredAt      time.Time `json:"stored_at"`
}

// NewPositionsStoredEvent creates an event with a fresh ID stamped now.
func NewPositionsStoredEvent(vesselID, source string, count int) *PositionsStoredEvent {
	return &PositionsStoredEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		VesselID:      vesselID,
		Count:         count,
		Source:        source,
		StoredAt:      time.Now().UTC(),
	}
}

// Validate checks the required fields.
func (e *PositionsStoredEvent) Validate() error {
	switch {
	case e.EventID == "":
		return errors.New("event_id is required")
	case e.VesselID == "":
		return errors.New("vessel_id is required")
	case e.Count < 0:
		return fmt.Errorf("count must be non-negative, got %d", e.Count)
	}
	return nil
}

// MarshalEvent validates and encodes an event.
func MarshalEvent(event *PositionsStoredEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates an event.
func UnmarshalEvent(data []byte) (*PositionsStoredEvent, error) {
	var event PositionsStoredEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return &event, nil
}
