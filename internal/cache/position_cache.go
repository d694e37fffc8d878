// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

// DefaultWindow is the trailing period held by the cache.
const DefaultWindow = 48 * time.Hour

// PositionQuerier is the read side of the position store.
// *database.DB satisfies it.
type PositionQuerier interface {
	QueryPositions(ctx context.Context, vesselID string, from, to *time.Time) ([]models.PositionSample, error)
	LatestPosition(ctx context.Context, vesselID string) (*models.PositionSample, error)
}

// PositionCache holds the trailing window of samples for the designated
// vessel, ascending by timestamp.
//
// Refresh queries the store without holding the window lock and then
// swaps the new window in under the write lock, so readers never block on
// the store and never observe a partial window. Readers receive copies.
type PositionCache struct {
	store    PositionQuerier
	vesselID string
	window   time.Duration
	now      func() time.Time

	// refreshMu orders concurrent refreshes so an older query result can
	// never replace a newer one.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	samples     []models.PositionSample
	generation  uint64
	refreshedAt time.Time
}

// NewPositionCache creates an empty cache for vesselID. A non-positive
// window selects DefaultWindow.
func NewPositionCache(store PositionQuerier, vesselID string, window time.Duration) *PositionCache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &PositionCache{
		store:    store,
		vesselID: vesselID,
		window:   window,
		now:      time.Now,
	}
}

// VesselID returns the designated vessel.
func (c *PositionCache) VesselID() string {
	return c.vesselID
}

// Refresh reloads the window from the store. On error the current window
// is kept.
func (c *PositionCache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	start := time.Now()
	cutoff := c.now().UTC().Add(-c.window)

	samples, err := c.store.QueryPositions(ctx, c.vesselID, &cutoff, nil)
	if err != nil {
		metrics.RecordCacheRefresh(time.Since(start), 0, err)
		return fmt.Errorf("refresh position cache: %w", err)
	}
	models.SortByTimestamp(samples)

	c.mu.Lock()
	c.samples = samples
	c.generation++
	c.refreshedAt = c.now()
	c.mu.Unlock()

	metrics.RecordCacheRefresh(time.Since(start), len(samples), nil)
	return nil
}

// IsCompleteFor reports whether the window is known to hold every stored
// sample at or after from. It is false for a nil bound and for an empty
// window.
func (c *PositionCache) IsCompleteFor(from *time.Time) bool {
	if from == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.samples) == 0 {
		return false
	}
	return !c.samples[0].Timestamp.After(*from)
}

// Latest returns the newest sample in the window.
func (c *PositionCache) Latest() (models.PositionSample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.samples) == 0 {
		return models.PositionSample{}, false
	}
	return c.samples[len(c.samples)-1], true
}

// RangeFrom returns the window samples at or after from, ascending. A nil
// bound returns the whole window.
func (c *PositionCache) RangeFrom(from *time.Time) []models.PositionSample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.PositionSample, 0, len(c.samples))
	for i := range c.samples {
		if from != nil && c.samples[i].Timestamp.Before(*from) {
			continue
		}
		out = append(out, c.samples[i])
	}
	return out
}

// Len returns the number of samples in the window.
func (c *PositionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}

// Generation returns the number of successful refreshes.
func (c *PositionCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// RefreshedAt returns the time of the last successful refresh, or the zero
// time before the first one.
func (c *PositionCache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}
