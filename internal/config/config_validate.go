// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	minRateLimitWindow = time.Second
	maxRateLimitWindow = time.Hour
	mmsiLength         = 9
)

// Validate checks the configuration for missing or malformed values.
func (c *Config) Validate() error {
	if err := c.validateVessel(); err != nil {
		return err
	}

	if err := c.validateAISStream(); err != nil {
		return err
	}

	if err := c.validateTrack(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateWAL(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateVessel() error {
	if c.Vessel.MMSI == "" {
		return fmt.Errorf("VESSEL_MMSI is required")
	}
	if len(c.Vessel.MMSI) != mmsiLength {
		return fmt.Errorf("VESSEL_MMSI must be %d digits, got %q", mmsiLength, c.Vessel.MMSI)
	}
	if _, err := strconv.ParseUint(c.Vessel.MMSI, 10, 32); err != nil {
		return fmt.Errorf("VESSEL_MMSI must be numeric, got %q", c.Vessel.MMSI)
	}
	if c.Vessel.CruiseStartDate != "" {
		if _, err := time.Parse(time.RFC3339, c.Vessel.CruiseStartDate); err != nil {
			return fmt.Errorf("VESSEL_CRUISE_START_DATE must be RFC3339: %w", err)
		}
	}
	return nil
}

func (c *Config) validateAISStream() error {
	if !c.AISStream.Enabled {
		return nil
	}
	if c.AISStream.APIKey == "" {
		return fmt.Errorf("AISSTREAM_API_KEY is required when AISSTREAM_ENABLED=true")
	}
	if err := validateWebSocketURL(c.AISStream.URL, "AISSTREAM_URL"); err != nil {
		return err
	}
	if c.AISStream.ReceiveTimeout <= 0 {
		return fmt.Errorf("AISSTREAM_RECEIVE_TIMEOUT must be positive")
	}
	if c.AISStream.InitialBackoff <= 0 || c.AISStream.MaxBackoff < c.AISStream.InitialBackoff {
		return fmt.Errorf("AISSTREAM_INITIAL_BACKOFF must be positive and not exceed AISSTREAM_MAX_BACKOFF")
	}
	return nil
}

func (c *Config) validateTrack() error {
	if !c.Track.Enabled {
		return nil
	}
	if c.Track.BaseURL == "" {
		return fmt.Errorf("TRACK_BASE_URL is required when TRACK_ENABLED=true")
	}
	if err := validateHTTPURL(c.Track.BaseURL, "TRACK_BASE_URL"); err != nil {
		return err
	}
	if c.Track.PollInterval <= 0 {
		return fmt.Errorf("TRACK_POLL_INTERVAL must be positive")
	}
	if c.Track.PollJitter < 0 {
		return fmt.Errorf("TRACK_POLL_JITTER must not be negative")
	}
	if c.Track.DedupThresholdMeters <= 0 {
		return fmt.Errorf("TRACK_DEDUP_THRESHOLD_METERS must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Window <= 0 {
		return fmt.Errorf("CACHE_WINDOW must be positive")
	}
	if c.Cache.RefreshInterval <= 0 {
		return fmt.Errorf("CACHE_REFRESH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateWAL() error {
	if !c.WAL.Enabled {
		return nil
	}
	if !c.WAL.InMemory && c.WAL.Path == "" {
		return fmt.Errorf("WAL_PATH is required when WAL_ENABLED=true")
	}
	if c.WAL.RetryInterval <= 0 {
		return fmt.Errorf("WAL_RETRY_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be positive")
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	if c.Server.FrontendURL != "" {
		if err := validateHTTPURL(c.Server.FrontendURL, "FRONTEND_URL"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
