// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package api provides the read-only HTTP API over recorded vessel positions.

Routes (chi):

	GET /api/v1/position/latest[/{mmsi}]     newest sample, 404 when none
	GET /api/v1/position/range[/{mmsi}]      samples in [from_ts, to_ts], oldest first
	GET /api/v1/settings                     designated vessel
	GET /api/v1/health[/live|/ready]         health and probes
	GET /metrics                             Prometheus exposition
	GET /                                    service name and version

When the MMSI is omitted the configured vessel is used. from_ts and to_ts
are optional and inclusive; they accept RFC3339, a zone-less timestamp or
date (UTC), or unix seconds.

Position queries go through a PositionReader, normally cache.ReadThrough,
so requests for the designated vessel inside the cache window never touch
DuckDB.

# Response Format

Every response uses the APIResponse envelope:

	{
	  "success": true,
	  "data": [...],
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 1, "count": 42}
	}

Errors carry a code from the ErrCode constants:

	{
	  "success": false,
	  "error": {"code": "VALIDATION_ERROR", "message": "to_ts must not be before from_ts"}
	}

# Middleware

Request ID and logging, RealIP, panic recovery, CORS (go-chi/cors), gzip,
Prometheus request metrics and a per-IP limit (go-chi/httprate) on the
position and settings routes.
*/
package api
