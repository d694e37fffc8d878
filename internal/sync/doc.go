// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package sync ingests position samples for the designated vessel from two
independent sources and keeps the stored track free of near-duplicates.

Key Components:

  - StreamClient: live AIS WebSocket feed, one sample per position report
  - TrackPoller: periodic reconciliation of the historical track snapshot
  - TrackClient / CircuitBreakerTrackClient: snapshot download with rate
    limiting and circuit breaker protection
  - DeduplicateTrack / Deduplicator: geometric near-duplicate filter
  - Manager: starts and stops both sources together

Architecture:

	AIS WebSocket --> StreamClient --+
	                                 +--> PositionStore --> RefreshRequester
	Track endpoint --> TrackPoller --+         ^
	                       |                   |
	                       +--> Deduplicator --+

The stream writes samples one at a time as they arrive. The poller writes
one batch per cycle and then runs the deduplication filter over the full
history, which also tidies up duplicates produced by the stream.

Error Handling:

Every failure is wrapped in an *IngestError classified as transport,
protocol or storage. Errors never escape the loops: the stream reconnects
with exponential backoff and the poller waits for its next cycle. Each
error is counted in vesseltrack_ingest_errors_total{source,kind}.

Thread Safety:

Start and Stop are safe for concurrent use. Stop cancels any pending
network call or sleep and returns only after the loop goroutine has exited.
*/
package sync
