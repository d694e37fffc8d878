// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

// Package eventprocessor provides the in-process event bus that tells the
// position cache when the store has changed.
//
// Ingestion components call Bus.RequestRefresh after every successful
// write. The bus publishes a PositionsStoredEvent on the
// "positions.stored" topic of a watermill GoChannel, and the cache
// refresher consumes it through SubscribeEvents:
//
//	StreamClient --+
//	               +--> Bus (positions.stored) --> cache.Refresher --> PositionCache
//	TrackPoller ---+
//
// Delivery is best-effort. Publishing never blocks ingestion and publish
// failures are only logged; the refresher's safety interval covers lost
// events.
//
// Watermill's own log output goes through ZerologAdapter so it shares the
// process log stream.
package eventprocessor
