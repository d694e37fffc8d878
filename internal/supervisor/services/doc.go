// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package services adapts Vesseltrack components to suture.Service.

Each wrapper turns a component lifecycle into Serve(ctx) error:

  - HTTPServerService: ListenAndServe / Shutdown with a drain timeout
  - WALRetryLoopService: Start / Stop of the spool retry loop
  - IngestionService: Start / Stop of the ingestion manager
  - CacheRefresherService: blocking Run of the cache refresher

Start/Stop wrappers call Stop before Serve returns, so when the tree has
stopped the wrapped goroutines have exited. The wrappers depend on small
interfaces rather than concrete packages to keep the import graph acyclic
and make them testable with mocks.
*/
package services
