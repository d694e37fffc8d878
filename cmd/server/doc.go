// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package main is the entry point for the Vesseltrack server.

Vesseltrack records the position history of one designated vessel from two
upstreams: a live AIS WebSocket feed and a polled binary track snapshot.
Samples land in DuckDB, the trailing window is kept in memory, and a small
read API serves latest position and time ranges.

# Commands

	vesseltrack [--config FILE] serve         (default) run everything
	vesseltrack decode FILE                   print a saved track snapshot as JSON lines
	vesseltrack poll-once [--mmsi M]          one poll cycle against the track endpoint
	vesseltrack dedup [--mmsi M] [--threshold METERS]

# Process Structure

serve builds a suture tree:

	vesseltrack
	├── data-layer        wal-retry-loop (when WAL_ENABLED)
	├── cache-layer       cache-refresher
	├── ingestion-layer   ingestion-manager (stream + poller)
	└── api-layer         http-server

SIGINT or SIGTERM cancels the tree. Serve returns once ingestion has
stopped and the HTTP server has drained; the DuckDB file is then
checkpointed and closed.

# Configuration

Koanf layers built-in defaults, an optional YAML file (--config,
CONFIG_PATH, ./config.yaml or /etc/vesseltrack/config.yaml) and the
environment. Common variables:

	VESSEL_MMSI          designated vessel (default 352594000)
	AISSTREAM_API_KEY    live feed key; the stream is disabled without it
	TRACK_BASE_URL       snapshot endpoint, fetched as {base}/{mmsi}
	DUCKDB_PATH          database file
	HTTP_PORT            read API port
	FRONTEND_URL         added to the CORS allow list
	LOG_LEVEL, LOG_FORMAT

# Example

	export AISSTREAM_API_KEY=...
	export DUCKDB_PATH=/var/lib/vesseltrack/positions.duckdb
	./vesseltrack serve
	curl localhost:8000/api/v1/position/latest
*/
package main
