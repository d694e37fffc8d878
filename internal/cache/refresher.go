// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/vesseltrack/internal/eventprocessor"
	"github.com/tomtom215/vesseltrack/internal/logging"
)

// DefaultRefreshInterval is the safety refresh period used when no
// ingestion events arrive.
const DefaultRefreshInterval = 5 * time.Minute

// EventSource delivers store-change notifications. *eventprocessor.Bus
// satisfies it.
type EventSource interface {
	SubscribeEvents(ctx context.Context) (<-chan eventprocessor.PositionsStoredEvent, error)
}

// Refresher keeps a PositionCache current. It refreshes once on start,
// after every burst of store-change events for the cached vessel, and on
// a fixed interval.
type Refresher struct {
	cache    *PositionCache
	events   EventSource
	interval time.Duration
}

// NewRefresher creates a refresher. events may be nil, leaving only the
// interval refresh.
func NewRefresher(cache *PositionCache, events EventSource, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{cache: cache, events: events, interval: interval}
}

// Run refreshes until ctx is done and then returns ctx.Err().
func (r *Refresher) Run(ctx context.Context) error {
	var events <-chan eventprocessor.PositionsStoredEvent
	if r.events != nil {
		ch, err := r.events.SubscribeEvents(ctx)
		if err != nil {
			return fmt.Errorf("subscribe to store events: %w", err)
		}
		events = ch
	}

	r.refresh(ctx, "startup")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			r.refresh(ctx, "interval")

		case event, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Bus closed; keep refreshing on the interval only.
				events = nil
				logging.Warn().Msg("Store event subscription closed, falling back to interval refresh")
				continue
			}
			relevant, coalesced := r.drain(events, event.VesselID == r.cache.VesselID(), 1)
			if relevant {
				logging.Debug().Int("events", coalesced).Str("source", event.Source).Msg("Refreshing position cache after store change")
				r.refresh(ctx, "event")
			}
		}
	}
}

// drain consumes events already queued so a burst triggers one refresh.
func (r *Refresher) drain(events <-chan eventprocessor.PositionsStoredEvent, relevant bool, count int) (bool, int) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return relevant, count
			}
			count++
			if event.VesselID == r.cache.VesselID() {
				relevant = true
			}
		default:
			return relevant, count
		}
	}
}

func (r *Refresher) refresh(ctx context.Context, reason string) {
	if err := r.cache.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Error().Err(err).Str("reason", reason).Msg("Position cache refresh failed")
		return
	}
	logging.Debug().
		Str("reason", reason).
		Int("samples", r.cache.Len()).
		Uint64("generation", r.cache.Generation()).
		Msg("Position cache refreshed")
}
