// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package wal

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

// DefaultRetryInterval is the time between replay passes.
const DefaultRetryInterval = 30 * time.Second

// SourceWAL labels samples replayed from the spool in refresh requests.
const SourceWAL = "wal"

// Appender is the write side of the position store.
type Appender interface {
	AppendPositions(ctx context.Context, vesselID string, samples []models.PositionSample) error
}

// RefreshRequester is notified after replayed samples are stored.
type RefreshRequester interface {
	RequestRefresh(ctx context.Context, vesselID, source string, stored int)
}

// RetryLoop periodically re-appends spooled samples to the store and
// confirms the ones that were written.
type RetryLoop struct {
	spool     *Spool
	store     Appender
	refresher RefreshRequester
	interval  time.Duration

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	stopDone chan struct{}
}

// NewRetryLoop creates a retry loop. refresher may be nil. A non-positive
// interval selects DefaultRetryInterval.
func NewRetryLoop(spool *Spool, store Appender, refresher RefreshRequester, interval time.Duration) *RetryLoop {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &RetryLoop{
		spool:     spool,
		store:     store,
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the background loop. Calling Start on a running loop is a
// no-op.
func (r *RetryLoop) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.stopDone = make(chan struct{})

	go r.run(loopCtx, r.stopDone)

	logging.Info().Dur("interval", r.interval).Msg("WAL retry loop started")
	return nil
}

// Stop stops the loop and waits for an in-flight pass to finish.
func (r *RetryLoop) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.running = false
	done := r.stopDone
	r.mu.Unlock()

	<-done
	logging.Info().Msg("WAL retry loop stopped")
}

// IsRunning returns whether the retry loop is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RetryLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RetryOnce(ctx)
		}
	}
}

// RetryOnce replays every pending entry once and returns how many were
// stored. Entries are appended per vessel in one batch; a failed batch
// stays pending with its attempt count bumped.
func (r *RetryLoop) RetryOnce(ctx context.Context) int {
	entries, err := r.spool.Pending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to get pending entries")
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	logging.Info().Int("pending_entries", len(entries)).Msg("WAL retry: processing pending entries")

	byVessel := make(map[string][]*Entry)
	var order []string
	for _, entry := range entries {
		id := entry.Sample.VesselID
		if _, ok := byVessel[id]; !ok {
			order = append(order, id)
		}
		byVessel[id] = append(byVessel[id], entry)
	}

	replayed, failed := 0, 0
	for _, vesselID := range order {
		if ctx.Err() != nil {
			break
		}
		batch := byVessel[vesselID]
		n, ok := r.replayVessel(ctx, vesselID, batch)
		replayed += n
		if !ok {
			failed += len(batch)
		}
	}

	if replayed > 0 {
		if err := r.spool.RunGC(); err != nil {
			logging.Warn().Err(err).Msg("WAL retry: value log GC failed")
		}
	}

	logging.Info().
		Int("succeeded", replayed).
		Int("failed", failed).
		Msg("WAL retry complete")
	return replayed
}

func (r *RetryLoop) replayVessel(ctx context.Context, vesselID string, batch []*Entry) (int, bool) {
	samples := make([]models.PositionSample, len(batch))
	for i, entry := range batch {
		samples[i] = entry.Sample
	}

	if err := r.store.AppendPositions(ctx, vesselID, samples); err != nil {
		logging.Error().
			Err(err).
			Str("vessel_id", vesselID).
			Int("samples", len(samples)).
			Msg("WAL retry: failed to store spooled samples")
		for _, entry := range batch {
			if updateErr := r.spool.UpdateAttempt(ctx, entry.ID, err.Error()); updateErr != nil {
				logging.Error().Err(updateErr).Str("entry_id", entry.ID).Msg("WAL retry: failed to update attempt")
			}
		}
		return 0, false
	}

	confirmed := 0
	for _, entry := range batch {
		if err := r.spool.Confirm(ctx, entry.ID); err != nil {
			logging.Error().Err(err).Str("entry_id", entry.ID).Msg("WAL retry: failed to confirm entry")
			continue
		}
		confirmed++
	}
	metrics.WALReplayed.Add(float64(confirmed))
	metrics.RecordSamplesStored(SourceWAL, len(samples))

	if r.refresher != nil {
		r.refresher.RequestRefresh(ctx, vesselID, SourceWAL, len(samples))
	}
	return confirmed, true
}
