// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"math"
	"testing"
	"time"
)

// Test assertion helpers with "check" prefix.
// Using t.Helper() ensures error messages point to the calling line.

// checkNoError fails the test immediately if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkKind checks that err is an IngestError of the wanted kind
func checkKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Errorf("error kind: expected %s, got %s (%v)", want, got, err)
	}
}

// checkStringEqual checks that got equals want, failing if not
func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

// checkIntEqual checks that got equals want
func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

// checkFloatNear checks that got is within tolerance of want
func checkFloatNear(t *testing.T, fieldName string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s: expected %v (+/- %v), got %v", fieldName, want, tolerance, got)
	}
}

// checkTimeEqual checks that two instants are equal
func checkTimeEqual(t *testing.T, fieldName string, got, want time.Time) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s: expected %s, got %s", fieldName, want.Format(time.RFC3339), got.Format(time.RFC3339))
	}
}

// waitFor polls cond until it returns true or the timeout elapses
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out after %v waiting for %s", timeout, what)
}
