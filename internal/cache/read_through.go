// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

// ErrNotFound is returned when no sample matches a query.
var ErrNotFound = errors.New("no positions found")

// ReadThrough answers position queries from the cache when it can prove
// completeness and from the store otherwise.
type ReadThrough struct {
	cache *PositionCache
	store PositionQuerier
}

// NewReadThrough creates a reader. cache may be nil, in which case every
// query goes to the store.
func NewReadThrough(cache *PositionCache, store PositionQuerier) *ReadThrough {
	return &ReadThrough{cache: cache, store: store}
}

func (r *ReadThrough) designated(vesselID string) bool {
	return r.cache != nil && r.cache.VesselID() == vesselID
}

// Latest returns the newest sample for vesselID.
func (r *ReadThrough) Latest(ctx context.Context, vesselID string) (models.PositionSample, error) {
	if r.designated(vesselID) {
		if sample, ok := r.cache.Latest(); ok {
			metrics.RecordCacheLookup("latest", true)
			return sample, nil
		}
	}
	metrics.RecordCacheLookup("latest", false)

	sample, err := r.store.LatestPosition(ctx, vesselID)
	if err != nil {
		return models.PositionSample{}, fmt.Errorf("query latest position: %w", err)
	}
	if sample == nil {
		return models.PositionSample{}, ErrNotFound
	}
	return *sample, nil
}

// Range returns samples for vesselID with from <= timestamp <= to,
// ascending. Either bound may be nil. The cache serves the query only for
// the designated vessel, with a lower bound the window covers and no
// upper bound.
func (r *ReadThrough) Range(ctx context.Context, vesselID string, from, to *time.Time) ([]models.PositionSample, error) {
	var samples []models.PositionSample

	if r.designated(vesselID) && to == nil && r.cache.IsCompleteFor(from) {
		metrics.RecordCacheLookup("range", true)
		samples = r.cache.RangeFrom(from)
	} else {
		metrics.RecordCacheLookup("range", false)
		var err error
		samples, err = r.store.QueryPositions(ctx, vesselID, from, to)
		if err != nil {
			return nil, fmt.Errorf("query positions: %w", err)
		}
	}

	if len(samples) == 0 {
		return nil, ErrNotFound
	}
	return samples, nil
}
