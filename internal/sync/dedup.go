// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

// DefaultDedupThresholdMeters is the distance below which a sample is
// considered a duplicate of its successor.
const DefaultDedupThresholdMeters = 25.0

// earthRadiusMeters is the IUGG mean Earth radius.
const earthRadiusMeters = 6371008.8

// HaversineMeters returns the great-circle distance between two points in
// meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// DeduplicateTrack splits a timestamp-ordered track into kept and removed
// samples. Sample i is removed when it lies closer than thresholdMeters to
// sample i+1 of the input; comparisons always use the input neighbors, not
// the survivors, so a slowly drifting run collapses to its last point. The
// last sample is always kept. Input order is preserved in both outputs.
func DeduplicateTrack(samples []models.PositionSample, thresholdMeters float64) (kept, removed []models.PositionSample) {
	kept = make([]models.PositionSample, 0, len(samples))
	for i := range samples {
		if i < len(samples)-1 {
			next := samples[i+1]
			d := HaversineMeters(samples[i].Latitude, samples[i].Longitude, next.Latitude, next.Longitude)
			if d < thresholdMeters {
				removed = append(removed, samples[i])
				continue
			}
		}
		kept = append(kept, samples[i])
	}
	return kept, removed
}

// Deduplicator applies DeduplicateTrack to a vessel's stored history.
type Deduplicator struct {
	store     PositionStore
	threshold float64
}

// NewDeduplicator creates a deduplicator. A non-positive threshold selects
// DefaultDedupThresholdMeters.
func NewDeduplicator(store PositionStore, thresholdMeters float64) *Deduplicator {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultDedupThresholdMeters
	}
	return &Deduplicator{store: store, threshold: thresholdMeters}
}

// Run loads the full history of vesselID, deletes the samples the filter
// removes and returns how many were deleted.
func (d *Deduplicator) Run(ctx context.Context, vesselID string) (int, error) {
	history, err := d.store.QueryPositions(ctx, vesselID, nil, nil)
	if err != nil {
		return 0, storageError("dedup_load", err)
	}

	_, removed := DeduplicateTrack(history, d.threshold)
	if len(removed) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(removed))
	for i := range removed {
		ids[i] = removed[i].ID
	}

	deleted, err := d.store.DeletePositions(ctx, ids)
	if err != nil {
		return 0, storageError("dedup_delete", fmt.Errorf("delete %d samples: %w", len(ids), err))
	}

	metrics.DedupRemoved.Add(float64(deleted))
	logging.Ctx(ctx).Debug().
		Str("vessel_id", vesselID).
		Int("history", len(history)).
		Int("removed", deleted).
		Msg("Deduplicated vessel track")

	return deleted, nil
}
