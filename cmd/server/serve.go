// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/vesseltrack/internal/api"
	"github.com/tomtom215/vesseltrack/internal/cache"
	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/database"
	"github.com/tomtom215/vesseltrack/internal/eventprocessor"
	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/supervisor"
	"github.com/tomtom215/vesseltrack/internal/supervisor/services"
	syncpkg "github.com/tomtom215/vesseltrack/internal/sync"
	"github.com/tomtom215/vesseltrack/internal/wal"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run ingestion, the position cache and the read API until SIGINT/SIGTERM",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

//nolint:gocyclo // sequential wiring of every component
func serve(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("vessel_mmsi", cfg.Vessel.MMSI).
		Bool("stream_enabled", cfg.AISStream.Enabled).
		Bool("track_enabled", cfg.Track.Enabled).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Vesseltrack")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// Close checkpoints the WAL into the database file.
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	bus := eventprocessor.NewBus(eventprocessor.DefaultBusConfig())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// Data layer: failed-write spool. Left as a nil interface when disabled.
	var spool syncpkg.FailedWriteSpool
	if cfg.WAL.Enabled {
		s, err := wal.Open(&cfg.WAL)
		if err != nil {
			return fmt.Errorf("open write-ahead spool: %w", err)
		}
		defer func() {
			if err := s.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing write-ahead spool")
			}
		}()
		spool = s

		retryLoop := wal.NewRetryLoop(s, db, bus, cfg.WAL.RetryInterval)
		tree.AddDataService(services.NewWALRetryLoopService(retryLoop))
		logging.Info().Str("path", cfg.WAL.Path).Bool("in_memory", cfg.WAL.InMemory).Msg("Write-ahead spool enabled")
	}

	// Cache layer.
	window := cache.NewPositionCache(db, cfg.Vessel.MMSI, cfg.Cache.Window)
	refresher := cache.NewRefresher(window, bus, cfg.Cache.RefreshInterval)
	tree.AddCacheService(services.NewCacheRefresherService(refresher))

	// Ingestion layer.
	manager := syncpkg.NewManagerFromConfig(cfg, db, bus, spool)
	tree.AddIngestionService(services.NewIngestionService(manager))

	// API layer.
	handler := api.NewHandler(cache.NewReadThrough(window, db), db, cfg.Vessel)
	handler.SetIngestionStatus(manager)
	handler.SetCacheStatus(window)
	handler.SetVersion(version)

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(&cfg.Server))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mw).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("Vesseltrack stopped")
	return nil
}
