// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package services

import (
	"context"
	"fmt"
)

// WALStartStopper matches the lifecycle of *wal.RetryLoop.
type WALStartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// WALRetryLoopService runs the failed-write spool retry loop under
// supervision. The loop replays spooled samples into the position store
// and requests a cache refresh after each replayed batch.
//
// Example usage:
//
//	retryLoop := wal.NewRetryLoop(spool, db, bus, cfg.WAL.RetryInterval)
//	tree.AddDataService(services.NewWALRetryLoopService(retryLoop))
type WALRetryLoopService struct {
	retryLoop WALStartStopper
	name      string
}

// NewWALRetryLoopService creates a new WAL retry loop service wrapper.
func NewWALRetryLoopService(retryLoop WALStartStopper) *WALRetryLoopService {
	return &WALRetryLoopService{
		retryLoop: retryLoop,
		name:      "wal-retry-loop",
	}
}

// Serve implements suture.Service. A Start error is returned so suture
// restarts the service with backoff.
func (s *WALRetryLoopService) Serve(ctx context.Context) error {
	if err := s.retryLoop.Start(ctx); err != nil {
		return fmt.Errorf("WAL retry loop start failed: %w", err)
	}

	<-ctx.Done()

	// Blocks until the loop goroutine has exited.
	s.retryLoop.Stop()

	return ctx.Err()
}

// String implements fmt.Stringer for suture's log messages.
func (s *WALRetryLoopService) String() string {
	return s.name
}
