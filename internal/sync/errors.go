// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"errors"
	"fmt"

	"github.com/tomtom215/vesseltrack/internal/metrics"
)

// ErrorKind classifies an ingestion failure.
type ErrorKind int

const (
	// KindTransport covers connection, timeout and non-2xx HTTP failures.
	KindTransport ErrorKind = iota + 1
	// KindProtocol covers malformed or unexpected upstream payloads.
	KindProtocol
	// KindStorage covers failures reported by the position store.
	KindStorage
)

// String returns the metric label for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// IngestError is returned by ingestion components. None of these errors
// are fatal to the process: the stream reconnects and the poller waits for
// its next cycle.
type IngestError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Error implements error.
func (e *IngestError) Error() string {
	return fmt.Sprintf("%s error during %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is matches another IngestError of the same kind, so callers can write
// errors.Is(err, &IngestError{Kind: KindStorage}).
func (e *IngestError) Is(target error) bool {
	t, ok := target.(*IngestError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func transportError(op string, err error) error {
	return &IngestError{Kind: KindTransport, Op: op, Err: err}
}

func protocolError(op string, err error) error {
	return &IngestError{Kind: KindProtocol, Op: op, Err: err}
}

func storageError(op string, err error) error {
	return &IngestError{Kind: KindStorage, Op: op, Err: err}
}

// KindOf returns the kind of the first IngestError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return 0
}

// recordIngestError counts err against its source. Errors without a kind
// are counted as transport failures.
func recordIngestError(source string, err error) {
	kind := KindOf(err)
	if kind == 0 {
		kind = KindTransport
	}
	metrics.RecordIngestError(source, kind.String())
}
