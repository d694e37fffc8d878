// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package database

import (
	"context"
	"fmt"
)

// Timestamps are stored as TIMESTAMP holding UTC wall time, which keeps
// the schema free of the ICU extension that TIMESTAMPTZ arithmetic needs.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS positions (
		id UUID PRIMARY KEY,
		vessel_id VARCHAR NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		speed_over_ground DOUBLE NOT NULL,
		course_over_ground DOUBLE NOT NULL,
		heading DOUBLE,
		navigation_status VARCHAR NOT NULL DEFAULT 'UNDEFINED',
		source VARCHAR NOT NULL DEFAULT 'stream',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_positions_vessel_ts ON positions (vessel_id, timestamp)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
