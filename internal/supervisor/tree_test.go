// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/vesseltrack/internal/cache"
	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/models"
	"github.com/tomtom215/vesseltrack/internal/supervisor/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("creates hierarchical supervisor tree", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("expected defaults %+v, got %+v", DefaultTreeConfig(), tree.config)
		}
	})
}

func TestTreeConfigFromConfig(t *testing.T) {
	got := TreeConfigFromConfig(config.SupervisorConfig{
		FailureThreshold: 3,
		FailureDecay:     60,
		FailureBackoff:   5 * time.Second,
		ShutdownTimeout:  20 * time.Second,
	})
	want := TreeConfig{
		FailureThreshold: 3,
		FailureDecay:     60,
		FailureBackoff:   5 * time.Second,
		ShutdownTimeout:  20 * time.Second,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Run("services in every layer start and stop", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{
			FailureBackoff:  50 * time.Millisecond,
			ShutdownTimeout: time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		dataSvc := NewMockService("wal-retry-loop")
		cacheSvc := NewMockService("cache-refresher")
		ingestSvc := NewMockService("ingestion-manager")
		apiSvc := NewMockService("http-server")
		tree.AddDataService(dataSvc)
		tree.AddCacheService(cacheSvc)
		tree.AddIngestionService(ingestSvc)
		tree.AddAPIService(apiSvc)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)

		all := []*MockService{dataSvc, cacheSvc, ingestSvc, apiSvc}
		waitFor(t, "all services to start", func() bool {
			for _, svc := range all {
				if svc.StartCount() < 1 {
					return false
				}
			}
			return true
		})

		cancel()
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("tree did not shut down in time")
		}

		for _, svc := range all {
			if svc.StopCount() != svc.StartCount() {
				t.Errorf("%s: %d starts but %d stops", svc, svc.StartCount(), svc.StopCount())
			}
		}
	})

	t.Run("serve returns only after a slow ingestion stop", func(t *testing.T) {
		tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: 2 * time.Second})

		ingestSvc := NewMockService("ingestion-manager")
		ingestSvc.SetStopDelay(150 * time.Millisecond)
		tree.AddIngestionService(ingestSvc)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)
		waitFor(t, "ingestion to start", func() bool { return ingestSvc.StartCount() >= 1 })

		cancel()
		<-errCh
		returnedAt := time.Now().UnixNano()

		stoppedAt := ingestSvc.stoppedAt.Load()
		if stoppedAt == 0 || stoppedAt > returnedAt {
			t.Error("tree returned before the ingestion service finished stopping")
		}
	})
}

func TestSupervisorTreeFailureHandling(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failingSvc := NewMockService("ingestion-manager")
	failingSvc.SetFailCount(2)
	stableSvc := NewMockService("http-server")

	tree.AddIngestionService(failingSvc)
	tree.AddAPIService(stableSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "failing service to be restarted", func() bool { return failingSvc.StartCount() >= 3 })

	if stableSvc.StartCount() != 1 {
		t.Errorf("a failure in ingestion must not restart the api layer, got %d starts", stableSvc.StartCount())
	}

	cancel()
	<-errCh
}

// stubQuerier serves a fixed window for the cache wiring test.
type stubQuerier struct {
	samples []models.PositionSample
}

func (s stubQuerier) QueryPositions(context.Context, string, *time.Time, *time.Time) ([]models.PositionSample, error) {
	return s.samples, nil
}

func (s stubQuerier) LatestPosition(context.Context, string) (*models.PositionSample, error) {
	if len(s.samples) == 0 {
		return nil, nil
	}
	latest := s.samples[len(s.samples)-1]
	return &latest, nil
}

func TestSupervisorTree_CacheRefresherWiring(t *testing.T) {
	sample := models.NewPositionSample("352594000", 41.25713, 2.9844166, time.Now().Add(-time.Minute),
		12.3, 45, nil, models.UnderwayUsingEngine, models.SourceStream)
	window := cache.NewPositionCache(stubQuerier{samples: []models.PositionSample{sample}}, "352594000", 0)

	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	tree.AddCacheService(services.NewCacheRefresherService(cache.NewRefresher(window, nil, time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, "startup refresh", func() bool { return window.Generation() >= 1 })
	if latest, ok := window.Latest(); !ok || latest.ID != sample.ID {
		t.Errorf("expected cached sample %s, got %+v (ok=%v)", sample.ID, latest, ok)
	}

	cancel()
	<-errCh
}
