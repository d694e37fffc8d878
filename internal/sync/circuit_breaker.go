// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/track"
)

// CircuitBreakerTrackClient wraps a TrackFetcher with the circuit breaker
// pattern so a failing track endpoint is left alone for a while instead of
// being hit every poll cycle.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout. Tests exercise the trip condition, not the recovery timing.
type CircuitBreakerTrackClient struct {
	client TrackFetcher
	cb     *gobreaker.CircuitBreaker[[]track.Point]
	name   string
}

// NewCircuitBreakerTrackClient wraps client. Configuration:
//   - 1 probe request in half-open state
//   - counts reset every 30 minutes while closed
//   - 5 minutes open before probing
//   - opens at a failure rate of 60% or more over at least 5 requests
func NewCircuitBreakerTrackClient(client TrackFetcher) *CircuitBreakerTrackClient {
	cbName := "track-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]track.Point](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    30 * time.Minute,
		Timeout:     5 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		// Canceled polls say nothing about endpoint health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerTrackClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// FetchTrack fetches a snapshot with circuit breaker protection. A rejected
// request is reported as a transport error.
func (c *CircuitBreakerTrackClient) FetchTrack(ctx context.Context, vesselID string) ([]track.Point, error) {
	points, err := c.cb.Execute(func() ([]track.Point, error) {
		return c.client.FetchTrack(ctx, vesselID)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, transportError("fetch_track", err)
		}

		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
		counts := c.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
	return points, nil
}

// State returns the current breaker state.
func (c *CircuitBreakerTrackClient) State() gobreaker.State {
	return c.cb.State()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
