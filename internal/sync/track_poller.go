// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
track_poller.go - Historical Track Poller

Reconciles the polled track snapshot with the store for one vessel. The
snapshot overlaps heavily with what is already stored, so each cycle keeps
only points strictly newer than the newest stored sample (the cursor) and
appends them as one batch. The cursor is read fresh every cycle.

Cycle:
 1. Fetch and decode the snapshot; an empty snapshot ends the cycle
 2. Read the cursor and drop points at or before it
 3. Sort ascending and append in a single transaction
 4. Run the deduplication filter over the full history
 5. Request a cache refresh

A failed cycle is logged and counted; the loop always waits for the next one.
*/

package sync

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
	"github.com/tomtom215/vesseltrack/internal/track"
)

// PollResult summarizes one poll cycle.
type PollResult struct {
	Fetched      int `json:"fetched"`
	Stored       int `json:"stored"`
	Deduplicated int `json:"deduplicated"`
}

// TrackPoller periodically polls the track endpoint for one vessel.
type TrackPoller struct {
	fetcher   TrackFetcher
	store     PositionStore
	dedup     *Deduplicator
	refresher RefreshRequester
	vesselID  string

	interval time.Duration
	jitter   time.Duration
	randDur  func(n time.Duration) time.Duration
	wait     func(ctx context.Context, d time.Duration) bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// PollerOption customizes a TrackPoller.
type PollerOption func(*TrackPoller)

// WithPollerRefresher sets the component notified after each cycle that
// wrote to the store.
func WithPollerRefresher(r RefreshRequester) PollerOption {
	return func(p *TrackPoller) {
		if r != nil {
			p.refresher = r
		}
	}
}

// WithPollerWait replaces the inter-cycle sleeper.
func WithPollerWait(wait func(ctx context.Context, d time.Duration) bool) PollerOption {
	return func(p *TrackPoller) { p.wait = wait }
}

// WithPollerJitterSource replaces the jitter source, which must return a
// duration in [0, n).
func WithPollerJitterSource(randDur func(n time.Duration) time.Duration) PollerOption {
	return func(p *TrackPoller) { p.randDur = randDur }
}

// NewTrackPoller creates a poller for vesselID.
func NewTrackPoller(cfg *config.TrackConfig, vesselID string, fetcher TrackFetcher, store PositionStore, opts ...PollerOption) *TrackPoller {
	p := &TrackPoller{
		fetcher:   fetcher,
		store:     store,
		dedup:     NewDeduplicator(store, cfg.DedupThresholdMeters),
		refresher: noopRefresher{},
		vesselID:  vesselID,
		interval:  cfg.PollInterval,
		jitter:    cfg.PollJitter,
		randDur:   randomDuration,
		wait:      sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the polling loop. The first cycle runs immediately.
func (p *TrackPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	logging.Info().
		Str("vessel_id", p.vesselID).
		Dur("interval", p.interval).
		Dur("jitter", p.jitter).
		Msg("Starting track poller")

	p.wg.Add(1)
	go p.pollLoop(runCtx)
	return nil
}

// Stop cancels the loop, including an in-flight cycle, and waits for it
// to exit.
func (p *TrackPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
	logging.Info().Msg("[track-poller] Track poller stopped")
}

func (p *TrackPoller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		cycleCtx := logging.ContextWithNewCorrelationID(ctx)
		start := time.Now()
		result, err := p.PollOnce(cycleCtx)
		metrics.RecordPollCycle(time.Since(start), err)

		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			recordIngestError(models.SourceTrack, err)
			logging.Ctx(cycleCtx).Warn().Err(err).
				Str("kind", KindOf(err).String()).
				Msg("Track poll cycle failed")
		default:
			logging.Ctx(cycleCtx).Info().
				Int("fetched", result.Fetched).
				Int("stored", result.Stored).
				Int("deduplicated", result.Deduplicated).
				Msg("Track poll cycle complete")
		}

		if !p.wait(ctx, p.nextDelay()) {
			return
		}
	}
}

// nextDelay returns the base interval plus jitter in [0, jitter).
func (p *TrackPoller) nextDelay() time.Duration {
	if p.jitter <= 0 {
		return p.interval
	}
	return p.interval + p.randDur(p.jitter)
}

// PollOnce runs a single cycle.
func (p *TrackPoller) PollOnce(ctx context.Context) (PollResult, error) {
	var result PollResult

	points, err := p.fetcher.FetchTrack(ctx, p.vesselID)
	if err != nil {
		return result, err
	}
	result.Fetched = len(points)
	if len(points) == 0 {
		return result, nil
	}

	cursor, err := p.store.LatestPosition(ctx, p.vesselID)
	if err != nil {
		return result, storageError("read_cursor", err)
	}

	batch := newerThanCursor(p.vesselID, points, cursor)
	models.SortByTimestamp(batch)

	if err := p.store.AppendPositions(ctx, p.vesselID, batch); err != nil {
		return result, storageError("append_batch", err)
	}
	result.Stored = len(batch)
	metrics.RecordSamplesStored(models.SourceTrack, len(batch))

	removed, err := p.dedup.Run(ctx, p.vesselID)
	if err != nil {
		return result, err
	}
	result.Deduplicated = removed

	p.refresher.RequestRefresh(ctx, p.vesselID, models.SourceTrack, result.Stored)
	return result, nil
}

// newerThanCursor converts points to samples, keeping only those strictly
// newer than cursor. A nil cursor keeps everything.
func newerThanCursor(vesselID string, points []track.Point, cursor *models.PositionSample) []models.PositionSample {
	samples := make([]models.PositionSample, 0, len(points))
	for i := range points {
		pt := &points[i]
		if cursor != nil && !pt.Timestamp.After(cursor.Timestamp) {
			continue
		}
		samples = append(samples, models.NewPositionSample(
			vesselID, pt.Latitude, pt.Longitude, pt.Timestamp,
			pt.Speed, normalizeCourse(pt.Course), nil, models.Undefined, models.SourceTrack,
		))
	}
	return samples
}

func randomDuration(n time.Duration) time.Duration {
	return time.Duration(rand.Int64N(int64(n))) //nolint:gosec // scheduling jitter
}
