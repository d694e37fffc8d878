// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package wal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

// Errors
var (
	// ErrSpoolClosed is returned when the spool is closed.
	ErrSpoolClosed = errors.New("spool is closed")

	// ErrEmptyEntryID is returned when an empty entry ID is provided.
	ErrEmptyEntryID = errors.New("entry ID cannot be empty")

	// ErrEntryNotFound is returned when an entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")
)

const (
	prefixPending = "pending:"
	gcRatio       = 0.5
	closeTimeout  = 30 * time.Second
)

// Entry is one spooled sample awaiting a successful store write.
type Entry struct {
	ID            string                `json:"id"`
	Sample        models.PositionSample `json:"sample"`
	CreatedAt     time.Time             `json:"created_at"`
	Attempts      int                   `json:"attempts"`
	LastAttemptAt time.Time             `json:"last_attempt_at,omitempty"`
	LastError     string                `json:"last_error,omitempty"`
}

// Spool persists stream samples whose store append failed. Entries are
// written to BadgerDB before Write returns and stay pending until Confirm
// removes them, so they survive a process restart when the spool is
// on disk.
type Spool struct {
	db       *badger.DB
	inMemory bool

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the spool described by cfg. With InMemory set
// the spool lives only as long as the process, which is what tests use.
func Open(cfg *config.WALConfig) (*Spool, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("wal path is required for an on-disk spool")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path).
			WithSyncWrites(true).
			WithCompression(options.Snappy)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Spool{db: db, inMemory: cfg.InMemory}

	pending, err := s.countPending()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.WALPending.Set(float64(pending))

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("pending", pending).
		Msg("WAL spool opened")
	return s, nil
}

func (s *Spool) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSpoolClosed
	}
	return nil
}

// Write spools a sample.
func (s *Spool) Write(ctx context.Context, sample models.PositionSample) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	entry := Entry{
		ID:        uuid.New().String(),
		Sample:    sample,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixPending+entry.ID), data)
	})
	if err != nil {
		return fmt.Errorf("write to BadgerDB: %w", err)
	}

	metrics.WALPending.Inc()
	logging.Ctx(ctx).Debug().
		Str("entry_id", entry.ID).
		Str("vessel_id", sample.VesselID).
		Time("timestamp", sample.Timestamp).
		Msg("Sample spooled")
	return nil
}

// Pending returns all unconfirmed entries, oldest first. Entries that
// fail to decode are logged and skipped.
func (s *Spool) Pending(ctx context.Context) ([]*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var entry Entry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("WAL failed to unmarshal entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Confirm removes an entry whose sample has been stored.
func (s *Spool) Confirm(ctx context.Context, entryID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	key := []byte(prefixPending + entryID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("get pending entry: %w", err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	metrics.WALPending.Dec()
	return nil
}

// UpdateAttempt records a failed replay of an entry.
func (s *Spool) UpdateAttempt(ctx context.Context, entryID string, lastError string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + entryID)
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}

		var entry Entry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}

		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastError

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return txn.Set(key, data)
	})
}

// RunGC reclaims value log space. It is a no-op for in-memory spools.
func (s *Spool) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.inMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close shuts the spool down. It is safe to call more than once.
func (s *Spool) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("WAL spool closed")
		return nil
	case <-time.After(closeTimeout):
		return fmt.Errorf("badgerdb close timeout after %v", closeTimeout)
	}
}

func (s *Spool) countPending() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count pending entries: %w", err)
	}
	return n, nil
}
