// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package services

import (
	"context"
	"errors"
	"fmt"
)

// Runner is a blocking component that returns when ctx is canceled.
// Satisfied by *cache.Refresher.
type Runner interface {
	Run(ctx context.Context) error
}

// CacheRefresherService runs the position cache refresher under
// supervision. The refresher loads the window at startup, then reloads it
// on store-write events and on its fallback interval.
type CacheRefresherService struct {
	runner Runner
	name   string
}

// NewCacheRefresherService creates a new cache refresher service wrapper.
func NewCacheRefresherService(runner Runner) *CacheRefresherService {
	return &CacheRefresherService{
		runner: runner,
		name:   "cache-refresher",
	}
}

// Serve implements suture.Service. Any error other than the context's own
// is returned so suture restarts the refresher.
func (s *CacheRefresherService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("exited before shutdown")
	}
	return fmt.Errorf("cache refresher: %w", err)
}

// String implements fmt.Stringer for suture's log messages.
func (s *CacheRefresherService) String() string {
	return s.name
}
