// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vesseltrack/internal/models"
	"github.com/tomtom215/vesseltrack/internal/track"
)

const testVesselID = "352594000"

// memoryStore is an in-memory PositionStore with injectable failures.
type memoryStore struct {
	mu          sync.Mutex
	samples     []models.PositionSample
	appendErr   error
	queryErr    error
	latestErr   error
	deleteErr   error
	appendCalls int
}

func newMemoryStore(samples ...models.PositionSample) *memoryStore {
	return &memoryStore{samples: samples}
}

func (s *memoryStore) AppendPositions(_ context.Context, vesselID string, samples []models.PositionSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendCalls++
	if s.appendErr != nil {
		return s.appendErr
	}
	for i := range samples {
		if samples[i].VesselID != vesselID {
			return fmt.Errorf("sample for %s in batch for %s", samples[i].VesselID, vesselID)
		}
	}
	s.samples = append(s.samples, samples...)
	return nil
}

func (s *memoryStore) QueryPositions(_ context.Context, vesselID string, from, to *time.Time) ([]models.PositionSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	out := make([]models.PositionSample, 0, len(s.samples))
	for _, sample := range s.samples {
		if sample.VesselID != vesselID {
			continue
		}
		if from != nil && sample.Timestamp.Before(*from) {
			continue
		}
		if to != nil && sample.Timestamp.After(*to) {
			continue
		}
		out = append(out, sample)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *memoryStore) LatestPosition(ctx context.Context, vesselID string) (*models.PositionSample, error) {
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	all, err := s.QueryPositions(ctx, vesselID, nil, nil)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	latest := all[len(all)-1]
	return &latest, nil
}

func (s *memoryStore) DeletePositions(_ context.Context, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.samples[:0]
	deleted := 0
	for _, sample := range s.samples {
		if _, ok := drop[sample.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, sample)
	}
	s.samples = kept
	return deleted, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

func (s *memoryStore) all() []models.PositionSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PositionSample(nil), s.samples...)
}

type refreshCall struct {
	vesselID string
	source   string
	stored   int
}

// recordingRefresher records refresh requests.
type recordingRefresher struct {
	mu    sync.Mutex
	calls []refreshCall
}

func (r *recordingRefresher) RequestRefresh(_ context.Context, vesselID, source string, stored int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, refreshCall{vesselID: vesselID, source: source, stored: stored})
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// recordingSpool records spooled samples.
type recordingSpool struct {
	mu      sync.Mutex
	samples []models.PositionSample
	err     error
}

func (s *recordingSpool) Write(_ context.Context, sample models.PositionSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.samples = append(s.samples, sample)
	return nil
}

func (s *recordingSpool) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// fakeFetcher returns a fixed snapshot or error.
type fakeFetcher struct {
	mu     sync.Mutex
	points []track.Point
	err    error
	calls  int
}

func (f *fakeFetcher) FetchTrack(_ context.Context, vesselID string) ([]track.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if vesselID != testVesselID {
		return nil, fmt.Errorf("unexpected vessel %s", vesselID)
	}
	return append([]track.Point(nil), f.points...), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) setPoints(points []track.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = points
}

// metersNorth returns the latitude offset equivalent to m meters.
func metersNorth(m float64) float64 {
	return m / 111195.08
}

func sampleAt(lat, lon float64, ts time.Time) models.PositionSample {
	return models.NewPositionSample(testVesselID, lat, lon, ts, 12.5, 90, nil, models.UnderwayUsingEngine, models.SourceTrack)
}
