// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestCircuitBreakerTrackClient_PassesThrough(t *testing.T) {
	fetcher := &fakeFetcher{points: snapshotPoints()}
	cb := NewCircuitBreakerTrackClient(fetcher)

	points, err := cb.FetchTrack(context.Background(), testVesselID)
	checkNoError(t, err)
	checkIntEqual(t, "points", len(points), 2)
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreakerTrackClient_OpensAfterFailures(t *testing.T) {
	fetcher := &fakeFetcher{err: transportError("fetch_track", errors.New("unexpected status 503"))}
	cb := NewCircuitBreakerTrackClient(fetcher)

	for i := 0; i < 5; i++ {
		_, err := cb.FetchTrack(context.Background(), testVesselID)
		checkKind(t, err, KindTransport)
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open after 5 failures", cb.State())
	}

	_, err := cb.FetchTrack(context.Background(), testVesselID)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	checkKind(t, err, KindTransport)
	checkIntEqual(t, "fetcher calls", fetcher.callCount(), 5)
}

func TestCircuitBreakerTrackClient_StaysClosedBelowMinimum(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	cb := NewCircuitBreakerTrackClient(fetcher)

	for i := 0; i < 4; i++ {
		_, _ = cb.FetchTrack(context.Background(), testVesselID)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed below 5 requests", cb.State())
	}
}

func TestCircuitBreakerTrackClient_IgnoresCancellation(t *testing.T) {
	fetcher := &fakeFetcher{err: context.Canceled}
	cb := NewCircuitBreakerTrackClient(fetcher)

	for i := 0; i < 10; i++ {
		_, _ = cb.FetchTrack(context.Background(), testVesselID)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, canceled requests should not trip the breaker", cb.State())
	}
}

func TestStateToString(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		str   string
		num   float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
		{gobreaker.State(42), "unknown", -1},
	}
	for _, tt := range tests {
		checkStringEqual(t, "state", stateToString(tt.state), tt.str)
		if got := stateToFloat(tt.state); got != tt.num {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.num)
		}
	}
}
