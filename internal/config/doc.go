// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package config provides centralized configuration management for Vesseltrack.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The loaded Config is validated once
at startup; a validation error is fatal.

# Environment Variables

Vessel:
  - VESSEL_MMSI: MMSI of the designated vessel (required)
  - VESSEL_NAME: display name (default: MSC Magnifica)
  - VESSEL_CRUISE_START_DATE: RFC3339 timestamp shown by /api/v1/settings

Live stream:
  - AISSTREAM_ENABLED: enable the WebSocket feed (default: true)
  - AISSTREAM_URL: feed endpoint (default: wss://stream.aisstream.io/v0/stream)
  - AISSTREAM_API_KEY: API key (required when enabled)
  - AISSTREAM_RECEIVE_TIMEOUT: reconnect after this long without a message (default: 60s)

Track poller:
  - TRACK_ENABLED: enable the snapshot poller (default: false)
  - TRACK_BASE_URL: snapshot endpoint, the MMSI is appended as a path segment
  - TRACK_POLL_INTERVAL / TRACK_POLL_JITTER: 5m / 60s
  - TRACK_DEDUP_THRESHOLD_METERS: 25

Storage and cache:
  - DUCKDB_PATH: database file (default: /data/vesseltrack.duckdb)
  - CACHE_WINDOW: trailing cache window (default: 48h)
  - WAL_ENABLED / WAL_PATH: spool for failed stream writes

Server:
  - HTTP_HOST / HTTP_PORT: listen address (default: 0.0.0.0:8000)
  - CORS_ORIGINS: comma-separated list
  - FRONTEND_URL: additional allowed origin

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Config File

	vessel:
	  mmsi: "352594000"
	aisstream:
	  api_key: "..."
	track:
	  enabled: true
	  base_url: "https://tracks.example.com/api/track"

The file is read from CONFIG_PATH, or the first of DefaultConfigPaths that exists.
*/
package config
