// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package cache keeps the recent track of the designated vessel in memory.

# Overview

Almost every read of the API asks for the latest position or the last day
or two of track for one vessel. PositionCache holds the trailing window
(48 hours by default) of that vessel's samples, ascending by timestamp, and
ReadThrough decides per query whether the window can answer it:

  - Latest: served from the window when the vessel is the designated one
    and the window is non-empty
  - Range: served from the window only for the designated vessel, with no
    upper bound, and with a lower bound at or after the window's oldest
    sample; everything else goes to the store

A range without a lower bound or with an upper bound always reads the
store, because the window cannot prove it holds every matching sample.

# Refreshing

Refresher rebuilds the window once at startup, after store-change events
published on the event bus (bursts are coalesced into one refresh), and on
a safety interval. The store query runs outside the window lock and the
result is swapped in atomically.

# Thread Safety

All methods are safe for concurrent use. Readers receive copies of the
window and never hold the lock across a store query.
*/
package cache
