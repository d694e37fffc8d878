// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

const positionColumns = `id, vessel_id, latitude, longitude, timestamp, speed_over_ground,
	course_over_ground, heading, navigation_status, source, created_at`

// AppendPositions inserts samples for vesselID in a single transaction:
// either all samples become visible or none do. Samples whose ID already
// exists are skipped, so replaying a batch is harmless.
func (db *DB) AppendPositions(ctx context.Context, vesselID string, samples []models.PositionSample) error {
	if len(samples) == 0 {
		return nil
	}

	start := time.Now()
	err := db.withConflictRetry(ctx, func() error {
		return db.appendPositionsTx(ctx, vesselID, samples)
	})
	metrics.RecordDBQuery("append_positions", time.Since(start), err)
	return err
}

func (db *DB) appendPositionsTx(ctx context.Context, vesselID string, samples []models.PositionSample) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO positions (`+positionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	now := time.Now().UTC()
	for i := range samples {
		s := &samples[i]
		if s.VesselID != "" && s.VesselID != vesselID {
			return fmt.Errorf("sample %s belongs to vessel %s, not %s", s.ID, s.VesselID, vesselID)
		}

		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		source := s.Source
		if source == "" {
			source = models.SourceStream
		}

		var heading sql.NullFloat64
		if s.Heading != nil {
			heading = sql.NullFloat64{Float64: *s.Heading, Valid: true}
		}

		if _, err = stmt.ExecContext(ctx,
			id.String(), vesselID, s.Latitude, s.Longitude, s.Timestamp.UTC(),
			s.SpeedOverGround, s.CourseOverGround, heading,
			s.NavigationStatus.String(), source, now,
		); err != nil {
			return fmt.Errorf("failed to insert position %d of %d: %w", i+1, len(samples), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// QueryPositions returns the samples for vesselID ordered ascending by
// timestamp. Both bounds are optional and inclusive.
func (db *DB) QueryPositions(ctx context.Context, vesselID string, from, to *time.Time) ([]models.PositionSample, error) {
	var (
		where = []string{"vessel_id = ?"}
		args  = []interface{}{vesselID}
	)
	if from != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, to.UTC())
	}

	query := `SELECT ` + positionColumns + ` FROM positions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY timestamp ASC, created_at ASC`

	start := time.Now()
	samples, err := db.queryPositions(ctx, query, args...)
	metrics.RecordDBQuery("query_positions", time.Since(start), err)
	return samples, err
}

// LatestPosition returns the newest sample for vesselID, or nil when the
// vessel has no samples.
func (db *DB) LatestPosition(ctx context.Context, vesselID string) (*models.PositionSample, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE vessel_id = ?
		ORDER BY timestamp DESC, created_at DESC LIMIT 1`

	start := time.Now()
	samples, err := db.queryPositions(ctx, query, vesselID)
	metrics.RecordDBQuery("latest_position", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}
	return &samples[0], nil
}

// DeletePositions removes the samples with the given IDs in one
// transaction and returns the number of rows deleted.
func (db *DB) DeletePositions(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int
	start := time.Now()
	err := db.withConflictRetry(ctx, func() error {
		n, err := db.deletePositionsTx(ctx, ids)
		deleted = n
		return err
	})
	metrics.RecordDBQuery("delete_positions", time.Since(start), err)
	return deleted, err
}

func (db *DB) deletePositionsTx(ctx context.Context, ids []uuid.UUID) (deleted int, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM positions WHERE id = CAST(? AS UUID)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, id := range ids {
		res, execErr := stmt.ExecContext(ctx, id.String())
		if execErr != nil {
			err = fmt.Errorf("failed to delete position %s: %w", id, execErr)
			return 0, err
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			deleted += int(n)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return deleted, nil
}

// CountPositions returns the number of stored samples for vesselID.
func (db *DB) CountPositions(ctx context.Context, vesselID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM positions WHERE vessel_id = ?`, vesselID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return n, nil
}

func (db *DB) queryPositions(ctx context.Context, query string, args ...interface{}) ([]models.PositionSample, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	samples := make([]models.PositionSample, 0, 64)
	for rows.Next() {
		var (
			s       models.PositionSample
			heading sql.NullFloat64
			status  string
		)
		if err := rows.Scan(
			&s.ID, &s.VesselID, &s.Latitude, &s.Longitude, &s.Timestamp,
			&s.SpeedOverGround, &s.CourseOverGround, &heading,
			&status, &s.Source, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if heading.Valid {
			h := heading.Float64
			s.Heading = &h
		}
		// Unknown names decode as Undefined.
		s.NavigationStatus, _ = models.ParseNavigationStatus(status)
		s.Timestamp = s.Timestamp.UTC()
		s.CreatedAt = s.CreatedAt.UTC()

		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return samples, nil
}

// withConflictRetry retries fn on DuckDB transaction conflicts with a
// short exponential backoff (1ms, 2ms, 4ms).
func (db *DB) withConflictRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < db.maxConflictRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("operation timed out or canceled: %w", ctx.Err())
		}
		if !isTransactionConflict(err) {
			return err
		}

		backoff := time.Millisecond * time.Duration(1<<uint(attempt))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
