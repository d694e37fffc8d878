// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Categories:
//
//  1. Tracked vessel:
//     - Vessel: MMSI and display details of the designated vessel
//
//  2. Ingestion sources:
//     - AISStream: live WebSocket position feed
//     - Track: polled historical-track snapshot endpoint
//
//  3. Infrastructure:
//     - Database: DuckDB position store
//     - Cache: trailing window cache in front of the store
//     - WAL: BadgerDB spool for stream samples that failed to persist
//     - Supervisor: restart policy for long-running services
//
//  4. API & Observability:
//     - Server: HTTP listener, CORS and rate limits
//     - Logging: log level and format
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Vessel     VesselConfig     `koanf:"vessel"`
	AISStream  AISStreamConfig  `koanf:"aisstream"`
	Track      TrackConfig      `koanf:"track"`
	Cache      CacheConfig      `koanf:"cache"`
	Database   DatabaseConfig   `koanf:"database"`
	WAL        WALConfig        `koanf:"wal"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// VesselConfig identifies the single designated vessel.
type VesselConfig struct {
	MMSI            string `koanf:"mmsi"`
	Name            string `koanf:"name"`
	CruiseStartDate string `koanf:"cruise_start_date"` // RFC3339, informational only
}

// AISStreamConfig configures the live WebSocket feed.
type AISStreamConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	APIKey         string        `koanf:"api_key"`
	ReceiveTimeout time.Duration `koanf:"receive_timeout"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
}

// TrackConfig configures the historical-track poller.
type TrackConfig struct {
	Enabled              bool          `koanf:"enabled"`
	BaseURL              string        `koanf:"base_url"` // snapshot is fetched from {base_url}/{mmsi}
	UserAgent            string        `koanf:"user_agent"`
	PollInterval         time.Duration `koanf:"poll_interval"`
	PollJitter           time.Duration `koanf:"poll_jitter"`
	RequestTimeout       time.Duration `koanf:"request_timeout"`
	RateLimitInterval    time.Duration `koanf:"rate_limit_interval"`
	DedupThresholdMeters float64       `koanf:"dedup_threshold_meters"`
}

// CacheConfig configures the trailing-window position cache.
type CacheConfig struct {
	Window          time.Duration `koanf:"window"`
	RefreshInterval time.Duration `koanf:"refresh_interval"` // safety refresh when no ingestion events arrive
}

// DatabaseConfig configures the DuckDB position store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// WALConfig configures the BadgerDB spool for failed stream writes.
type WALConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Path          string        `koanf:"path"`
	InMemory      bool          `koanf:"in_memory"`
	RetryInterval time.Duration `koanf:"retry_interval"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	FrontendURL     string        `koanf:"frontend_url"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures the global zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig configures the suture restart policy.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AllowedOrigins returns the CORS origins plus the frontend URL. A frontend
// URL ending in a slash is also allowed without it.
func (s ServerConfig) AllowedOrigins() []string {
	origins := make([]string, 0, len(s.CORSOrigins)+2)
	origins = append(origins, s.CORSOrigins...)
	if s.FrontendURL != "" {
		origins = append(origins, s.FrontendURL)
		if trimmed := strings.TrimRight(s.FrontendURL, "/"); trimmed != s.FrontendURL {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
