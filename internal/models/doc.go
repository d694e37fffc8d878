// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package models defines the data structures shared by the ingestion,
storage, cache and API layers.

Key Components:

  - PositionSample: one observed vessel position, the unit of storage
  - NavigationStatus: the 16 AIS navigational states, with Undefined as the
    fallback for unknown or missing codes
  - VesselSettings: description of the designated vessel for API clients

Thread Safety:

All types are plain values. PositionSample is treated as immutable after
construction; the Heading pointer is never mutated once set.
*/
package models
