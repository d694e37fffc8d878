// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package database

import (
	"testing"
	"time"
)

// Test assertion helpers. t.Helper() makes failures point at the caller.

// checkNoError fails the test if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkError fails the test if err is nil
func checkError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// checkStringEqual checks that got equals want
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

// checkTimeEqual checks that two instants are equal and got is in UTC
func checkTimeEqual(t *testing.T, fieldName string, got, want time.Time) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s: expected %v, got %v", fieldName, want, got)
	}
	if got.Location() != time.UTC {
		t.Errorf("%s: expected UTC location, got %v", fieldName, got.Location())
	}
}

// checkAscending checks that timestamps never decrease
func checkAscending(t *testing.T, name string, values []time.Time) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		if values[i].Before(values[i-1]) {
			t.Errorf("%s not sorted ascending at %d: %v before %v", name, i, values[i], values[i-1])
			return
		}
	}
}
