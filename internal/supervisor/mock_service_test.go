// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// MockService is a controllable suture.Service for tree tests.
type MockService struct {
	name       string
	startCount atomic.Int32
	stopCount  atomic.Int32
	failCount  atomic.Int32
	maxFails   int32
	stopDelay  time.Duration
	stoppedAt  atomic.Int64
	mu         sync.Mutex
}

// NewMockService creates a new mock service for testing.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// Serve fails maxFails times, then runs until ctx is canceled. On cancel
// it sleeps stopDelay before returning, to model a slow Stop.
func (m *MockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	m.mu.Lock()
	maxFails := m.maxFails
	stopDelay := m.stopDelay
	m.mu.Unlock()

	if maxFails > 0 && m.failCount.Add(1) <= maxFails {
		return errors.New("simulated failure")
	}

	<-ctx.Done()
	if stopDelay > 0 {
		time.Sleep(stopDelay)
	}
	m.stoppedAt.Store(time.Now().UnixNano())
	return ctx.Err()
}

// SetFailCount configures the service to fail n times before running.
func (m *MockService) SetFailCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxFails = int32(n)
}

// SetStopDelay makes Serve take d to return after cancellation.
func (m *MockService) SetStopDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopDelay = d
}

// StartCount returns how many times Serve was called.
func (m *MockService) StartCount() int32 {
	return m.startCount.Load()
}

// StopCount returns how many times Serve returned.
func (m *MockService) StopCount() int32 {
	return m.stopCount.Load()
}

// String implements fmt.Stringer for suture's log messages.
func (m *MockService) String() string {
	return m.name
}
