// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/database"
	"github.com/tomtom215/vesseltrack/internal/logging"
	syncpkg "github.com/tomtom215/vesseltrack/internal/sync"
	"github.com/tomtom215/vesseltrack/internal/track"
)

// maxSnapshotFileSize bounds what decode reads from disk.
const maxSnapshotFileSize = 64 << 20

// decodedPoint is the JSON form printed by the decode command.
type decodedPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Course    float64   `json:"course_over_ground"`
	Speed     float64   `json:"speed_over_ground"`
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "decode a saved binary track snapshot and print one JSON point per line",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("decode requires exactly one FILE argument", 2)
			}
			return decodeFile(c.Args().First(), c.App.Writer)
		},
	}
}

func decodeFile(path string, out io.Writer) error {
	f, err := os.Open(path) //nolint:gosec // path is an operator-supplied CLI argument
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf, err := io.ReadAll(io.LimitReader(f, maxSnapshotFileSize))
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	enc := json.NewEncoder(out)
	for _, pt := range track.Decode(buf) {
		if err := enc.Encode(decodedPoint(pt)); err != nil {
			return fmt.Errorf("write point: %w", err)
		}
	}
	return nil
}

// withDatabase loads configuration, opens the store, runs fn and closes
// the store again.
func withDatabase(c *cli.Context, fn func(ctx context.Context, cfg *config.Config, db *database.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	return fn(logging.ContextWithNewCorrelationID(c.Context), cfg, db)
}

func mmsiFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "mmsi",
		Usage: "vessel MMSI (defaults to the configured vessel)",
	}
}

func vesselFromFlag(c *cli.Context, cfg *config.Config) string {
	if mmsi := c.String("mmsi"); mmsi != "" {
		return mmsi
	}
	return cfg.Vessel.MMSI
}

func pollOnceCommand() *cli.Command {
	return &cli.Command{
		Name:  "poll-once",
		Usage: "fetch the track snapshot once, store new points and deduplicate",
		Flags: []cli.Flag{mmsiFlag()},
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, cfg *config.Config, db *database.DB) error {
				vesselID := vesselFromFlag(c, cfg)
				fetcher := syncpkg.NewCircuitBreakerTrackClient(syncpkg.NewTrackClient(&cfg.Track))
				poller := syncpkg.NewTrackPoller(&cfg.Track, vesselID, fetcher, db)

				result, err := poller.PollOnce(ctx)
				if err != nil {
					return fmt.Errorf("poll %s: %w", vesselID, err)
				}

				logging.Ctx(ctx).Info().
					Str("vessel_id", vesselID).
					Int("fetched", result.Fetched).
					Int("stored", result.Stored).
					Int("deduplicated", result.Deduplicated).
					Msg("Poll cycle complete")
				return nil
			})
		},
	}
}

func dedupCommand() *cli.Command {
	return &cli.Command{
		Name:  "dedup",
		Usage: "remove stored samples closer than the dedup threshold to their successor",
		Flags: []cli.Flag{
			mmsiFlag(),
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "distance threshold in meters (defaults to track.dedup_threshold_meters)",
			},
		},
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, cfg *config.Config, db *database.DB) error {
				vesselID := vesselFromFlag(c, cfg)
				threshold := cfg.Track.DedupThresholdMeters
				if c.IsSet("threshold") {
					threshold = c.Float64("threshold")
				}

				removed, err := syncpkg.NewDeduplicator(db, threshold).Run(ctx, vesselID)
				if err != nil {
					return fmt.Errorf("dedup %s: %w", vesselID, err)
				}

				logging.Ctx(ctx).Info().
					Str("vessel_id", vesselID).
					Int("removed", removed).
					Msg("Deduplication complete")
				return nil
			})
		},
	}
}
