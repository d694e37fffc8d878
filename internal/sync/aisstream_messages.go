// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vesseltrack/internal/models"
)

// Stream message types.
const (
	MessageTypePositionReport = "PositionReport"
)

const (
	// streamTimeLayout matches the first 19 characters of MetaData.time_utc,
	// e.g. "2026-01-05 17:45:11.123456789 +0000 UTC".
	streamTimeLayout = "2006-01-02 15:04:05"
)

// globalBoundingBox covers the whole globe; filtering is done by MMSI.
var globalBoundingBox = [][][2]float64{{{-90, -180}, {90, 180}}}

// SubscriptionRequest is the first frame sent after connecting.
type SubscriptionRequest struct {
	APIKey          string         `json:"APIKey"`
	BoundingBoxes   [][][2]float64 `json:"BoundingBoxes"`
	FiltersShipMMSI []string       `json:"FiltersShipMMSI"`
}

// NewSubscriptionRequest builds a subscription for a single vessel.
func NewSubscriptionRequest(apiKey, vesselID string) SubscriptionRequest {
	return SubscriptionRequest{
		APIKey:          apiKey,
		BoundingBoxes:   globalBoundingBox,
		FiltersShipMMSI: []string{vesselID},
	}
}

// StreamMessage is the envelope of every message on the live feed.
type StreamMessage struct {
	MessageType string          `json:"MessageType"`
	Message     StreamPayload   `json:"Message"`
	MetaData    StreamMetaData  `json:"MetaData"`
	Error       string          `json:"error,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// StreamPayload holds the typed body keyed by message type. Only position
// reports are decoded.
type StreamPayload struct {
	PositionReport *PositionReport `json:"PositionReport,omitempty"`
}

// PositionReport is an AIS class A position report. Pointer fields are
// required and distinguish a missing field from a zero value.
type PositionReport struct {
	UserID             int64    `json:"UserID"`
	Latitude           *float64 `json:"Latitude"`
	Longitude          *float64 `json:"Longitude"`
	Cog                *float64 `json:"Cog"`
	Sog                *float64 `json:"Sog"`
	TrueHeading        *int     `json:"TrueHeading"`
	NavigationalStatus *int     `json:"NavigationalStatus"`
	Valid              bool     `json:"Valid"`
}

// StreamMetaData carries the receive time and vessel identity.
type StreamMetaData struct {
	MMSI      int64   `json:"MMSI"`
	ShipName  string  `json:"ShipName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeUTC   string  `json:"time_utc"`
}

// ParseStreamMessage decodes a raw frame. Decoding failures are protocol
// errors.
func ParseStreamMessage(data []byte) (*StreamMessage, error) {
	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, protocolError("parse_message", err)
	}
	if msg.Error != "" {
		return nil, protocolError("parse_message", fmt.Errorf("upstream error: %s", msg.Error))
	}
	if msg.MessageType == "" {
		return nil, protocolError("parse_message", errors.New("missing MessageType"))
	}
	msg.Raw = data
	return &msg, nil
}

// IsPositionReport reports whether the message carries a position report.
func (m *StreamMessage) IsPositionReport() bool {
	return m.MessageType == MessageTypePositionReport
}

// VesselID returns the MMSI from the metadata as text, or "" when absent.
func (m *StreamMessage) VesselID() string {
	if m.MetaData.MMSI == 0 {
		return ""
	}
	return strconv.FormatInt(m.MetaData.MMSI, 10)
}

// ToSample converts a position report to a stream sample for vesselID.
// Values are stored as received, including AIS "not available" sentinels
// such as heading 511, course 360 and latitude 91.
func (m *StreamMessage) ToSample(vesselID string) (models.PositionSample, error) {
	report := m.Message.PositionReport
	if report == nil {
		return models.PositionSample{}, protocolError("convert_report", errors.New("message has no PositionReport body"))
	}
	if report.Latitude == nil || report.Longitude == nil {
		return models.PositionSample{}, protocolError("convert_report", errors.New("position report without coordinates"))
	}
	if report.Sog == nil || report.Cog == nil {
		return models.PositionSample{}, protocolError("convert_report", errors.New("position report without speed or course"))
	}

	ts, err := parseStreamTime(m.MetaData.TimeUTC)
	if err != nil {
		return models.PositionSample{}, protocolError("convert_report", err)
	}

	var heading *float64
	if report.TrueHeading != nil {
		h := float64(*report.TrueHeading)
		heading = &h
	}

	status := models.Undefined
	if report.NavigationalStatus != nil {
		status = models.NavigationStatusFromCode(*report.NavigationalStatus)
	}

	return models.NewPositionSample(vesselID, *report.Latitude, *report.Longitude, ts, *report.Sog, *report.Cog,
		heading, status, models.SourceStream), nil
}

// parseStreamTime reads the leading "YYYY-MM-DD HH:MM:SS" of time_utc.
// Fractional seconds and the zone suffix are discarded; the value is UTC.
func parseStreamTime(s string) (time.Time, error) {
	if len(s) < len(streamTimeLayout) {
		return time.Time{}, fmt.Errorf("time_utc %q too short", s)
	}
	ts, err := time.ParseInLocation(streamTimeLayout, s[:len(streamTimeLayout)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("time_utc %q: %w", s, err)
	}
	return ts, nil
}
