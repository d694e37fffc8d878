// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vesseltrack/internal/models"
)

// reportFields overrides PositionReport fields in test frames. A nil
// value removes the field.
type reportFields map[string]any

func positionReportFrame(mmsi int64, timeUTC string, overrides reportFields) []byte {
	report := map[string]any{
		"UserID":             mmsi,
		"Latitude":           41.25713,
		"Longitude":          2.9844166,
		"Cog":                127.4,
		"Sog":                18.2,
		"TrueHeading":        128,
		"NavigationalStatus": 0,
		"Valid":              true,
	}
	for k, v := range overrides {
		if v == nil {
			delete(report, k)
			continue
		}
		report[k] = v
	}
	frame := map[string]any{
		"MessageType": "PositionReport",
		"Message":     map[string]any{"PositionReport": report},
		"MetaData": map[string]any{
			"MMSI":     mmsi,
			"ShipName": "MSC MAGNIFICA",
			"time_utc": timeUTC,
		},
	}
	data, err := json.Marshal(frame)
	if err != nil {
		panic(err)
	}
	return data
}

const testTimeUTC = "2026-01-05 17:45:11.123456789 +0000 UTC"

func TestNewSubscriptionRequest(t *testing.T) {
	data, err := json.Marshal(NewSubscriptionRequest("secret", testVesselID))
	checkNoError(t, err)

	want := `{"APIKey":"secret","BoundingBoxes":[[[-90,-180],[90,180]]],"FiltersShipMMSI":["352594000"]}`
	checkStringEqual(t, "subscription", string(data), want)
}

func TestParseStreamMessage_PositionReport(t *testing.T) {
	msg, err := ParseStreamMessage(positionReportFrame(352594000, testTimeUTC, nil))
	checkNoError(t, err)

	if !msg.IsPositionReport() {
		t.Fatal("expected a position report")
	}
	checkStringEqual(t, "VesselID", msg.VesselID(), testVesselID)

	sample, err := msg.ToSample(testVesselID)
	checkNoError(t, err)

	checkStringEqual(t, "VesselID", sample.VesselID, testVesselID)
	checkStringEqual(t, "Source", sample.Source, models.SourceStream)
	checkFloatNear(t, "Latitude", sample.Latitude, 41.25713, 1e-9)
	checkFloatNear(t, "Longitude", sample.Longitude, 2.9844166, 1e-9)
	checkFloatNear(t, "SpeedOverGround", sample.SpeedOverGround, 18.2, 1e-9)
	checkFloatNear(t, "CourseOverGround", sample.CourseOverGround, 127.4, 1e-9)
	checkTimeEqual(t, "Timestamp", sample.Timestamp, time.Date(2026, 1, 5, 17, 45, 11, 0, time.UTC))
	if sample.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", sample.Timestamp.Location())
	}
	if sample.Heading == nil || *sample.Heading != 128 {
		t.Errorf("Heading = %v, want 128", sample.Heading)
	}
	if sample.NavigationStatus != models.UnderwayUsingEngine {
		t.Errorf("NavigationStatus = %v, want UNDERWAY_USING_ENGINE", sample.NavigationStatus)
	}
}

func TestToSample_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		fields reportFields
		check  func(t *testing.T, s models.PositionSample)
	}{
		{
			name:   "heading sentinel kept",
			fields: reportFields{"TrueHeading": 511},
			check: func(t *testing.T, s models.PositionSample) {
				if s.Heading == nil || *s.Heading != 511 {
					t.Errorf("Heading = %v, want 511", s.Heading)
				}
			},
		},
		{
			name:   "heading missing",
			fields: reportFields{"TrueHeading": nil},
			check: func(t *testing.T, s models.PositionSample) {
				if s.Heading != nil {
					t.Errorf("Heading = %v, want nil", *s.Heading)
				}
			},
		},
		{
			name:   "moored",
			fields: reportFields{"NavigationalStatus": 5},
			check: func(t *testing.T, s models.PositionSample) {
				if s.NavigationStatus != models.Moored {
					t.Errorf("NavigationStatus = %v, want MOORED", s.NavigationStatus)
				}
			},
		},
		{
			name:   "unknown status code",
			fields: reportFields{"NavigationalStatus": 42},
			check: func(t *testing.T, s models.PositionSample) {
				if s.NavigationStatus != models.Undefined {
					t.Errorf("NavigationStatus = %v, want UNDEFINED", s.NavigationStatus)
				}
			},
		},
		{
			name:   "status missing",
			fields: reportFields{"NavigationalStatus": nil},
			check: func(t *testing.T, s models.PositionSample) {
				if s.NavigationStatus != models.Undefined {
					t.Errorf("NavigationStatus = %v, want UNDEFINED", s.NavigationStatus)
				}
			},
		},
		{
			name:   "course sentinel kept",
			fields: reportFields{"Cog": 360.0},
			check: func(t *testing.T, s models.PositionSample) {
				checkFloatNear(t, "CourseOverGround", s.CourseOverGround, 360, 1e-9)
			},
		},
		{
			name:   "coordinate sentinels kept",
			fields: reportFields{"Latitude": 91.0, "Longitude": 181.0},
			check: func(t *testing.T, s models.PositionSample) {
				checkFloatNear(t, "Latitude", s.Latitude, 91, 1e-9)
				checkFloatNear(t, "Longitude", s.Longitude, 181, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseStreamMessage(positionReportFrame(352594000, testTimeUTC, tt.fields))
			checkNoError(t, err)
			sample, err := msg.ToSample(testVesselID)
			checkNoError(t, err)
			tt.check(t, sample)
		})
	}
}

func TestToSample_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		timeUTC string
		fields  reportFields
	}{
		{"missing latitude", testTimeUTC, reportFields{"Latitude": nil}},
		{"missing speed", testTimeUTC, reportFields{"Sog": nil}},
		{"missing course", testTimeUTC, reportFields{"Cog": nil}},
		{"short timestamp", "2026-01-05", nil},
		{"garbled timestamp", "yesterday around noon", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseStreamMessage(positionReportFrame(352594000, tt.timeUTC, tt.fields))
			checkNoError(t, err)
			_, err = msg.ToSample(testVesselID)
			checkKind(t, err, KindProtocol)
		})
	}
}

func TestParseStreamMessage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `position`},
		{"truncated", `{"MessageType":"PositionReport","Message":{`},
		{"missing type", `{"Message":{},"MetaData":{}}`},
		{"upstream error", `{"error":"Api Key Is Not Valid"}`},
		{"wrong field type", `{"MessageType":"PositionReport","Message":{"PositionReport":{"Latitude":"north"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStreamMessage([]byte(tt.data))
			checkKind(t, err, KindProtocol)
		})
	}
}

func TestParseStreamMessage_OtherTypes(t *testing.T) {
	msg, err := ParseStreamMessage([]byte(`{"MessageType":"ShipStaticData","Message":{"ShipStaticData":{"Name":"MSC MAGNIFICA"}},"MetaData":{"MMSI":352594000}}`))
	checkNoError(t, err)

	if msg.IsPositionReport() {
		t.Error("ShipStaticData should not be treated as a position report")
	}
	if _, err := msg.ToSample(testVesselID); err == nil {
		t.Error("ToSample on a message without a report should fail")
	}
}

func TestStreamMessage_VesselIDMissing(t *testing.T) {
	msg, err := ParseStreamMessage([]byte(`{"MessageType":"PositionReport","MetaData":{}}`))
	checkNoError(t, err)
	checkStringEqual(t, "VesselID", msg.VesselID(), "")
}
