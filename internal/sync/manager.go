// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/logging"
)

// Manager owns the ingestion components of the designated vessel. Either
// component may be disabled by configuration.
type Manager struct {
	vesselID string
	stream   *StreamClient
	poller   *TrackPoller

	mu      sync.Mutex
	running bool
}

// ManagerStatus reports what the manager is running.
type ManagerStatus struct {
	VesselID      string `json:"vessel_id"`
	Running       bool   `json:"running"`
	StreamEnabled bool   `json:"stream_enabled"`
	StreamState   string `json:"stream_state,omitempty"`
	PollerEnabled bool   `json:"poller_enabled"`
}

// NewManager creates a manager from already constructed components. A nil
// component is treated as disabled.
func NewManager(vesselID string, stream *StreamClient, poller *TrackPoller) *Manager {
	return &Manager{
		vesselID: vesselID,
		stream:   stream,
		poller:   poller,
	}
}

// NewManagerFromConfig builds the stream client and track poller enabled
// in cfg. spool may be nil.
func NewManagerFromConfig(cfg *config.Config, store PositionStore, refresher RefreshRequester, spool FailedWriteSpool) *Manager {
	vesselID := cfg.Vessel.MMSI

	var stream *StreamClient
	if cfg.AISStream.Enabled {
		opts := []StreamOption{WithStreamRefresher(refresher)}
		if spool != nil {
			opts = append(opts, WithStreamSpool(spool))
		}
		stream = NewStreamClient(&cfg.AISStream, vesselID, store, opts...)
	}

	var poller *TrackPoller
	if cfg.Track.Enabled {
		fetcher := NewCircuitBreakerTrackClient(NewTrackClient(&cfg.Track))
		poller = NewTrackPoller(&cfg.Track, vesselID, fetcher, store, WithPollerRefresher(refresher))
	}

	return NewManager(vesselID, stream, poller)
}

// Start starts all enabled components. If one fails to start, the ones
// already started are stopped again.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}
	if m.stream == nil && m.poller == nil {
		logging.Warn().Str("vessel_id", m.vesselID).Msg("No ingestion source enabled")
	}

	if m.stream != nil {
		if err := m.stream.Start(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			return fmt.Errorf("start stream client: %w", err)
		}
	}
	if m.poller != nil {
		if err := m.poller.Start(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			if m.stream != nil {
				m.stream.Stop()
			}
			return fmt.Errorf("start track poller: %w", err)
		}
	}

	m.running = true
	logging.Info().
		Str("vessel_id", m.vesselID).
		Bool("stream", m.stream != nil).
		Bool("poller", m.poller != nil).
		Msg("Ingestion started")
	return nil
}

// Stop stops both components concurrently and returns once both loops
// have exited.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := pool.New()
	if m.stream != nil {
		p.Go(m.stream.Stop)
	}
	if m.poller != nil {
		p.Go(m.poller.Stop)
	}
	p.Wait()

	if m.running {
		m.running = false
		logging.Info().Str("vessel_id", m.vesselID).Msg("Ingestion stopped")
	}
}

// Status returns a snapshot of the manager state.
func (m *Manager) Status() ManagerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := ManagerStatus{
		VesselID:      m.vesselID,
		Running:       m.running,
		StreamEnabled: m.stream != nil,
		PollerEnabled: m.poller != nil,
	}
	if m.stream != nil {
		status.StreamState = m.stream.State().String()
	}
	return status
}

// Poller returns the track poller, or nil when disabled.
func (m *Manager) Poller() *TrackPoller {
	return m.poller
}
