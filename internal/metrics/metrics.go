// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Ingestion Metrics
	IngestSamplesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vesseltrack_ingest_samples_stored_total",
			Help: "Total number of position samples appended to the store",
		},
		[]string{"source"}, // "stream", "track", "wal"
	)

	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vesseltrack_ingest_errors_total",
			Help: "Total number of ingestion errors by source and kind",
		},
		[]string{"source", "kind"}, // kind: "transport", "protocol", "storage"
	)

	StreamState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vesseltrack_stream_state",
			Help: "Streaming client state (0=idle, 1=connecting, 2=subscribed, 3=receiving, 4=reconnecting, 5=stopped)",
		},
	)

	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vesseltrack_stream_reconnects_total",
			Help: "Total number of streaming client reconnect attempts",
		},
	)

	StreamMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vesseltrack_stream_messages_total",
			Help: "Total number of messages received from the live feed",
		},
		[]string{"type"},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vesseltrack_poll_cycle_duration_seconds",
			Help:    "Duration of track poll cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vesseltrack_poll_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll cycle",
		},
	)

	DedupRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vesseltrack_dedup_removed_total",
			Help: "Total number of position samples removed by deduplication",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vesseltrack_cache_hits_total",
			Help: "Total number of reads served from the position cache",
		},
		[]string{"query"}, // "latest", "range"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vesseltrack_cache_misses_total",
			Help: "Total number of reads that fell through to the store",
		},
		[]string{"query"},
	)

	CacheWindowSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vesseltrack_cache_window_samples",
			Help: "Number of samples in the cache window after the last refresh",
		},
	)

	CacheRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vesseltrack_cache_refresh_duration_seconds",
			Help:    "Duration of cache refreshes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vesseltrack_cache_refresh_errors_total",
			Help: "Total number of failed cache refreshes",
		},
	)

	// WAL Metrics
	WALPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vesseltrack_wal_pending_entries",
			Help: "Number of spooled samples awaiting a successful store write",
		},
	)

	WALReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vesseltrack_wal_replayed_total",
			Help: "Total number of spooled samples written to the store on retry",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordDBQuery records a DuckDB query duration and, on failure, an error.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordIngestError counts an ingestion error by source and kind.
func RecordIngestError(source, kind string) {
	IngestErrors.WithLabelValues(source, kind).Inc()
}

// RecordSamplesStored counts samples appended to the store.
func RecordSamplesStored(source string, n int) {
	if n > 0 {
		IngestSamplesStored.WithLabelValues(source).Add(float64(n))
	}
}

// RecordPollCycle records a completed poll cycle.
func RecordPollCycle(duration time.Duration, err error) {
	PollDuration.Observe(duration.Seconds())
	if err == nil {
		PollLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordCacheLookup records whether a read was served from the cache.
func RecordCacheLookup(query string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(query).Inc()
		return
	}
	CacheMisses.WithLabelValues(query).Inc()
}

// RecordCacheRefresh records a cache refresh outcome.
func RecordCacheRefresh(duration time.Duration, size int, err error) {
	CacheRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		CacheRefreshErrors.Inc()
		return
	}
	CacheWindowSize.Set(float64(size))
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
