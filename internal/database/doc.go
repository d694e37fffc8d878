// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package database implements the DuckDB-backed position store.

All position samples of all vessels live in a single positions table keyed
by sample UUID, with a (vessel_id, timestamp) index serving the range and
latest queries.

Store operations:

  - AppendPositions: insert a batch in one transaction (all or nothing)
  - QueryPositions: samples in an optional inclusive [from, to] range, ascending
  - LatestPosition: newest sample of a vessel, nil when none
  - DeletePositions: remove samples by ID, used by the deduplication pass

Write operations retry DuckDB transaction conflicts with a short
exponential backoff. Every operation is timed into the
duckdb_query_duration_seconds histogram.

Tests use an in-memory database (Path ":memory:").
*/
package database
