// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package services

import (
	"context"
	"fmt"
)

// StartStopManager matches the lifecycle of *sync.Manager. Stop blocks
// until both ingestion loops have exited.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop()
}

// IngestionService runs the ingestion manager (live stream and track
// poller) under supervision.
//
// Stop is called before Serve returns, so once the supervisor tree has
// stopped no ingestion goroutine is left writing to the store.
type IngestionService struct {
	manager StartStopManager
	name    string
}

// NewIngestionService creates a new ingestion service wrapper.
//
// Example usage:
//
//	manager := sync.NewManagerFromConfig(cfg, db, bus, spool)
//	tree.AddIngestionService(services.NewIngestionService(manager))
func NewIngestionService(manager StartStopManager) *IngestionService {
	return &IngestionService{
		manager: manager,
		name:    "ingestion-manager",
	}
}

// Serve implements suture.Service.
func (s *IngestionService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("ingestion manager start failed: %w", err)
	}

	<-ctx.Done()

	s.manager.Stop()

	return ctx.Err()
}

// String implements fmt.Stringer for suture's log messages.
func (s *IngestionService) String() string {
	return s.name
}
