// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

// Package logging provides centralized zerolog-based structured logging for Vesseltrack.
//
// A single global logger is configured once from main via Init. Components
// derive tagged child loggers with WithComponent, and ingestion cycles and
// API requests carry correlation/request IDs through context so that
// logging.Ctx(ctx) stamps them on every line.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("vessel", mmsi).Msg("Stream subscribed")
//	logging.Error().Err(err).Msg("Append failed")
//	logging.Ctx(ctx).Info().Int("stored", n).Msg("Poll cycle complete")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Suture Integration
//
// The supervisor tree requires an *slog.Logger; NewSlogLogger returns one
// whose records are written through zerolog:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//	spec := suture.Spec{EventHook: handler.MustHook()}
package logging
