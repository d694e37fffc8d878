// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

// Package wal spools stream samples that could not be written to the
// position store, using BadgerDB.
//
// # Flow
//
//	StreamClient → Store append fails → Spool.Write (fsync)
//	RetryLoop (every 30s) → Store append → Spool.Confirm
//	                                  ↓ (on failure)
//	                          Entry kept, attempt recorded
//
// Replayed samples are older than what the stream has stored since, so
// they may duplicate a neighbour. The next deduplication pass removes
// them like any other duplicate.
//
// # Usage
//
//	spool, err := wal.Open(&cfg.WAL)
//	if err != nil {
//	    return err
//	}
//	defer spool.Close()
//
//	loop := wal.NewRetryLoop(spool, db, bus, cfg.WAL.RetryInterval)
//	tree.AddDataService(services.NewWALRetryLoopService(loop))
//
// Set in_memory for tests; nothing survives Close in that mode.
package wal
