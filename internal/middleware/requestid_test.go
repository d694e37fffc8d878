// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vesseltrack/internal/logging"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var capturedID, correlationID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = logging.RequestIDFromContext(r.Context())
		correlationID = logging.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	RequestID(handler).ServeHTTP(rec, req)

	responseID := rec.Header().Get(RequestIDHeader)
	if responseID == "" {
		t.Fatal("Expected X-Request-ID header in response")
	}
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if capturedID != responseID {
		t.Errorf("Context ID (%s) doesn't match response header ID (%s)", capturedID, responseID)
	}
	if correlationID == "" {
		t.Error("Expected correlation ID in context")
	}
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	var capturedID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = logging.RequestIDFromContext(r.Context())
	})

	existingID := "existing-request-id-12345"
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, existingID)
	rec := httptest.NewRecorder()
	RequestID(handler).ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != existingID {
		t.Errorf("Expected X-Request-ID to be %s, got %s", existingID, got)
	}
	if capturedID != existingID {
		t.Errorf("Expected context ID %s, got %s", existingID, capturedID)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	original := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { logging.SetLogger(original) })

	handler := RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"status":503`, `"path":"/api/v1/health/ready"`, `"request_id"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
