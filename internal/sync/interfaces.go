// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vesseltrack/internal/models"
)

// PositionStore is the subset of the DuckDB store used by ingestion.
// *database.DB satisfies it.
type PositionStore interface {
	AppendPositions(ctx context.Context, vesselID string, samples []models.PositionSample) error
	QueryPositions(ctx context.Context, vesselID string, from, to *time.Time) ([]models.PositionSample, error)
	LatestPosition(ctx context.Context, vesselID string) (*models.PositionSample, error)
	DeletePositions(ctx context.Context, ids []uuid.UUID) (int, error)
}

// RefreshRequester is notified after new samples are stored so the
// position cache can be rebuilt. Implementations must not block.
type RefreshRequester interface {
	RequestRefresh(ctx context.Context, vesselID, source string, stored int)
}

// FailedWriteSpool keeps stream samples whose store append failed so they
// can be replayed later. *wal.Spool satisfies it.
type FailedWriteSpool interface {
	Write(ctx context.Context, sample models.PositionSample) error
}

type noopRefresher struct{}

func (noopRefresher) RequestRefresh(context.Context, string, string, int) {}
