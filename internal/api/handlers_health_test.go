// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/vesseltrack/internal/models"
	syncpkg "github.com/tomtom215/vesseltrack/internal/sync"
)

func TestHealth_Healthy(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&fakeReader{})
	h.SetIngestionStatus(fakeIngestion{status: syncpkg.ManagerStatus{
		VesselID:      testVesselID,
		Running:       true,
		StreamEnabled: true,
		StreamState:   "connected",
		PollerEnabled: true,
	}})
	h.SetCacheStatus(fakeCacheStatus{n: 42, gen: 3, at: testBase})

	rec := serve(t, h, http.MethodGet, "/api/v1/health")
	checkStatus(t, rec, http.StatusOK)

	resp := decodeResponse[HealthStatus](t, rec)
	if resp.Data.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", resp.Data.Status)
	}
	if !resp.Data.DatabaseConnected {
		t.Error("Expected database_connected true")
	}
	if resp.Data.Ingestion == nil || resp.Data.Ingestion.StreamState != "connected" {
		t.Errorf("Expected ingestion status, got %+v", resp.Data.Ingestion)
	}
	if resp.Data.Cache == nil || resp.Data.Cache.Samples != 42 || resp.Data.Cache.Generation != 3 {
		t.Errorf("Expected cache status, got %+v", resp.Data.Cache)
	}
	if resp.Data.Cache.RefreshedAt == nil || !resp.Data.Cache.RefreshedAt.Equal(testBase) {
		t.Errorf("Expected refreshed_at %v, got %v", testBase, resp.Data.Cache.RefreshedAt)
	}
}

func TestHealth_Degraded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler func() *Handler
	}{
		{"store unreachable", func() *Handler {
			return NewHandler(&fakeReader{}, fakePinger{err: errStoreDown}, testVessel())
		}},
		{"no store", func() *Handler {
			return NewHandler(&fakeReader{}, nil, testVessel())
		}},
		{"ingestion stopped", func() *Handler {
			h := newTestHandler(&fakeReader{})
			h.SetIngestionStatus(fakeIngestion{status: syncpkg.ManagerStatus{VesselID: testVesselID}})
			return h
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, tt.handler(), http.MethodGet, "/api/v1/health")
			checkStatus(t, rec, http.StatusOK)
			if got := decodeResponse[HealthStatus](t, rec).Data.Status; got != "degraded" {
				t.Errorf("Expected degraded, got %s", got)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeReader{}, fakePinger{err: errStoreDown}, testVessel())
	rec := serve(t, h, http.MethodGet, "/api/v1/health/live")
	checkStatus(t, rec, http.StatusOK)

	resp := decodeResponse[map[string]interface{}](t, rec)
	if resp.Data["alive"] != true {
		t.Errorf("Expected alive true, got %v", resp.Data["alive"])
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestHandler(&fakeReader{}), http.MethodGet, "/api/v1/health/ready")
	checkStatus(t, rec, http.StatusOK)

	h := NewHandler(&fakeReader{}, fakePinger{err: errStoreDown}, testVessel())
	rec = serve(t, h, http.MethodGet, "/api/v1/health/ready")
	checkStatus(t, rec, http.StatusServiceUnavailable)

	resp := decodeResponse[map[string]interface{}](t, rec)
	if resp.Success {
		t.Error("Expected Success false when not ready")
	}
	if resp.Data["database_connected"] != false {
		t.Errorf("Expected database_connected false, got %v", resp.Data["database_connected"])
	}
}

func TestSettings(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestHandler(&fakeReader{}), http.MethodGet, "/api/v1/settings")
	checkStatus(t, rec, http.StatusOK)

	resp := decodeResponse[models.VesselSettings](t, rec)
	want := models.VesselSettings{
		VesselMMSI:      testVesselID,
		VesselName:      "MSC MAGNIFICA",
		CruiseStartDate: "2026-01-05T12:45:11-05:00",
	}
	if resp.Data != want {
		t.Errorf("Expected %+v, got %+v", want, resp.Data)
	}
}
