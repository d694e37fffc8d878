// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vesseltrack/config.yaml",
	"/etc/vesseltrack/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultTrackUserAgent mimics a desktop browser; the track endpoint rejects
// obvious non-browser clients.
const DefaultTrackUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// defaultConfig returns a Config with all default values.
func defaultConfig() *Config {
	return &Config{
		Vessel: VesselConfig{
			MMSI:            "",
			Name:            "MSC Magnifica",
			CruiseStartDate: "",
		},
		AISStream: AISStreamConfig{
			Enabled:        true,
			URL:            "wss://stream.aisstream.io/v0/stream",
			APIKey:         "",
			ReceiveTimeout: 60 * time.Second,
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     60 * time.Second,
		},
		Track: TrackConfig{
			Enabled:              false,
			BaseURL:              "",
			UserAgent:            DefaultTrackUserAgent,
			PollInterval:         5 * time.Minute,
			PollJitter:           60 * time.Second,
			RequestTimeout:       30 * time.Second,
			RateLimitInterval:    10 * time.Second,
			DedupThresholdMeters: 25,
		},
		Cache: CacheConfig{
			Window:          48 * time.Hour,
			RefreshInterval: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/vesseltrack.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		WAL: WALConfig{
			Enabled:       false,
			Path:          "/data/wal",
			InMemory:      false,
			RetryInterval: 30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
			FrontendURL:     "",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: explicit mapping in envTransformFunc
//
// The result is validated; any error is fatal at startup.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when set from env.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Vessel
	"vessel_mmsi":              "vessel.mmsi",
	"vessel_name":              "vessel.name",
	"vessel_cruise_start_date": "vessel.cruise_start_date",

	// Live stream
	"aisstream_enabled":         "aisstream.enabled",
	"aisstream_url":             "aisstream.url",
	"aisstream_api_key":         "aisstream.api_key",
	"aisstream_receive_timeout": "aisstream.receive_timeout",
	"aisstream_initial_backoff": "aisstream.initial_backoff",
	"aisstream_max_backoff":     "aisstream.max_backoff",

	// Track poller
	"track_enabled":                "track.enabled",
	"track_base_url":               "track.base_url",
	"track_user_agent":             "track.user_agent",
	"track_poll_interval":          "track.poll_interval",
	"track_poll_jitter":            "track.poll_jitter",
	"track_request_timeout":        "track.request_timeout",
	"track_rate_limit_interval":    "track.rate_limit_interval",
	"track_dedup_threshold_meters": "track.dedup_threshold_meters",

	// Cache
	"cache_window":           "cache.window",
	"cache_refresh_interval": "cache.refresh_interval",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// WAL
	"wal_enabled":        "wal.enabled",
	"wal_path":           "wal.path",
	"wal_in_memory":      "wal.in_memory",
	"wal_retry_interval": "wal.retry_interval",

	// Server
	"http_host":         "server.host",
	"http_port":         "server.port",
	"server_timeout":    "server.timeout",
	"cors_origins":      "server.cors_origins",
	"frontend_url":      "server.frontend_url",
	"rate_limit_reqs":   "server.rate_limit_reqs",
	"rate_limit_window": "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - VESSEL_MMSI -> vessel.mmsi
//   - AISSTREAM_API_KEY -> aisstream.api_key
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
