// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

// Package metrics defines the Prometheus instrumentation for Vesseltrack.
//
// All collectors are registered with the default registry through promauto
// and exposed by the API at GET /metrics. Coverage:
//
//   - DuckDB query latency and errors per store operation
//   - Ingestion: samples stored, errors by kind, stream state and reconnects
//   - Track poll cycle duration and deduplication removals
//   - Position cache hits, misses and window size
//   - WAL spool depth and replays
//   - Circuit breaker state for the track endpoint
//   - API request counts and latency
package metrics
