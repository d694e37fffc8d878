// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package supervisor provides Suture-based process supervision for Vesseltrack.

The process runs as a tree of suture supervisors so a panic or error in
one long-running component restarts that component, with backoff, instead
of taking the process down.

# Tree Structure

	vesseltrack (root)
	├── data-layer
	│   └── wal-retry-loop        replays spooled samples into DuckDB
	├── cache-layer
	│   └── cache-refresher       reloads the trailing window on store events
	├── ingestion-layer
	│   └── ingestion-manager     live stream and track poller
	└── api-layer
	    └── http-server           read API

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewWALRetryLoopService(retryLoop))
	tree.AddCacheService(services.NewCacheRefresherService(refresher))
	tree.AddIngestionService(services.NewIngestionService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Serve returns once every service has returned or the shutdown timeout has
elapsed; UnstoppedServiceReport lists any service that overran it. Supervisor
events are logged through sutureslog into the zerolog-backed slog handler.
*/
package supervisor
