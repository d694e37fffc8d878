// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vesseltrack/internal/config"
	"github.com/tomtom215/vesseltrack/internal/logging"
	"github.com/tomtom215/vesseltrack/internal/metrics"
	"github.com/tomtom215/vesseltrack/internal/models"
)

// StreamState is the lifecycle state of a StreamClient.
type StreamState int32

const (
	StateIdle StreamState = iota
	StateConnecting
	StateSubscribed
	StateReceiving
	StateReconnecting
	StateStopped
)

// String returns the lowercase state name.
func (s StreamState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReceiving:
		return "receiving"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	streamHandshakeTimeout = 10 * time.Second
	streamWriteTimeout     = 10 * time.Second
)

// ErrAlreadyRunning is returned when Start is called on a running component.
var ErrAlreadyRunning = errors.New("already running")

// StreamClient keeps a subscription to the live AIS feed open for one
// vessel and appends every position report to the store.
//
// Connection cycle:
//
//	Idle -> Connecting -> Subscribed -> Receiving
//	          ^                             |
//	          +------- Reconnecting <-------+
//
// Any transport failure, including no message within the receive timeout,
// ends the cycle. The reconnect delay doubles from InitialBackoff up to
// MaxBackoff and resets only after a message has been received, so an
// endpoint that accepts the handshake and then drops the connection still
// backs off.
type StreamClient struct {
	url            string
	apiKey         string
	vesselID       string
	receiveTimeout time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration

	store     PositionStore
	refresher RefreshRequester
	spool     FailedWriteSpool
	dialer    *websocket.Dialer
	wait      func(ctx context.Context, d time.Duration) bool
	log       zerolog.Logger

	state atomic.Int32

	conn   *websocket.Conn
	connMu sync.Mutex

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// StreamOption customizes a StreamClient.
type StreamOption func(*StreamClient)

// WithStreamRefresher sets the component notified after each stored sample.
func WithStreamRefresher(r RefreshRequester) StreamOption {
	return func(c *StreamClient) {
		if r != nil {
			c.refresher = r
		}
	}
}

// WithStreamSpool sets the spool receiving samples the store rejected.
func WithStreamSpool(s FailedWriteSpool) StreamOption {
	return func(c *StreamClient) { c.spool = s }
}

// WithStreamWait replaces the reconnect sleeper. The function returns false
// when ctx is done before d elapses.
func WithStreamWait(wait func(ctx context.Context, d time.Duration) bool) StreamOption {
	return func(c *StreamClient) { c.wait = wait }
}

// NewStreamClient creates a client for vesselID. It does not connect until
// Start is called.
func NewStreamClient(cfg *config.AISStreamConfig, vesselID string, store PositionStore, opts ...StreamOption) *StreamClient {
	c := &StreamClient{
		url:            cfg.URL,
		apiKey:         cfg.APIKey,
		vesselID:       vesselID,
		receiveTimeout: cfg.ReceiveTimeout,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		store:          store,
		refresher:      noopRefresher{},
		dialer: &websocket.Dialer{
			HandshakeTimeout:  streamHandshakeTimeout,
			EnableCompression: true,
		},
		wait: sleepContext,
		log:  logging.WithComponent("aisstream").With().Str("vessel_id", vesselID).Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setState(StateIdle)
	return c
}

// State returns the current lifecycle state.
func (c *StreamClient) State() StreamState {
	return StreamState(c.state.Load())
}

func (c *StreamClient) setState(s StreamState) {
	c.state.Store(int32(s))
	metrics.StreamState.Set(float64(s))
}

// Start launches the connection loop in the background.
func (c *StreamClient) Start(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.running {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	c.wg.Add(1)
	go c.run(runCtx)

	c.log.Info().Str("url", c.url).Msg("AIS stream client started")
	return nil
}

// Stop cancels the loop, closes any open connection and waits for the
// loop to exit. It is safe to call more than once.
func (c *StreamClient) Stop() {
	c.runMu.Lock()
	if !c.running {
		c.runMu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.runMu.Unlock()

	cancel()
	c.wg.Wait()
	c.log.Info().Msg("AIS stream client stopped")
}

func (c *StreamClient) run(ctx context.Context) {
	defer c.wg.Done()
	defer c.setState(StateStopped)

	bo := newStreamBackOff(c.initialBackoff, c.maxBackoff)

	for {
		c.setState(StateConnecting)
		err := c.runSession(ctx, bo)
		if ctx.Err() != nil {
			return
		}

		recordIngestError(models.SourceStream, err)
		delay := bo.NextBackOff()
		c.setState(StateReconnecting)
		metrics.StreamReconnects.Inc()

		c.log.Warn().Err(err).
			Str("kind", KindOf(err).String()).
			Dur("retry_in", delay).
			Msg("AIS stream disconnected, reconnecting")

		if !c.wait(ctx, delay) {
			return
		}
	}
}

// runSession performs one connect, subscribe and receive cycle. It only
// returns once the connection has failed or ctx is done.
func (c *StreamClient) runSession(ctx context.Context, bo backoff.BackOff) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	stopClose := context.AfterFunc(ctx, c.closeConnection)
	defer func() {
		stopClose()
		c.closeConnection()
	}()

	if err := c.subscribe(conn); err != nil {
		return err
	}
	c.setState(StateSubscribed)
	c.log.Debug().Msg("Subscribed to AIS stream")

	received := false
	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.receiveTimeout)); err != nil {
			return transportError("set_read_deadline", err)
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return transportError("receive", errors.New("no message within receive timeout"))
			}
			return transportError("receive", err)
		}

		if c.handleMessage(ctx, data) && !received {
			received = true
			bo.Reset()
			c.setState(StateReceiving)
		}
	}
}

func (c *StreamClient) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, transportError("connect", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return conn, nil
}

func (c *StreamClient) subscribe(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return transportError("subscribe", err)
	}
	if err := conn.WriteJSON(NewSubscriptionRequest(c.apiKey, c.vesselID)); err != nil {
		return transportError("subscribe", err)
	}
	return nil
}

// handleMessage processes one frame. It returns true when the frame was a
// well-formed feed message.
func (c *StreamClient) handleMessage(ctx context.Context, data []byte) bool {
	msg, err := ParseStreamMessage(data)
	if err != nil {
		recordIngestError(models.SourceStream, err)
		c.log.Warn().Err(err).Int("bytes", len(data)).Msg("Dropping malformed stream message")
		return false
	}
	metrics.StreamMessages.WithLabelValues(msg.MessageType).Inc()

	if !msg.IsPositionReport() {
		return true
	}
	if id := msg.VesselID(); id != "" && id != c.vesselID {
		c.log.Debug().Str("mmsi", id).Msg("Ignoring position report for another vessel")
		return true
	}

	sample, err := msg.ToSample(c.vesselID)
	if err != nil {
		recordIngestError(models.SourceStream, err)
		c.log.Warn().Err(err).Msg("Dropping invalid position report")
		return false
	}

	c.storeSample(ctx, sample)
	return true
}

func (c *StreamClient) storeSample(ctx context.Context, sample models.PositionSample) {
	if err := c.store.AppendPositions(ctx, c.vesselID, []models.PositionSample{sample}); err != nil {
		serr := storageError("append_position", err)
		recordIngestError(models.SourceStream, serr)

		if c.spool != nil {
			spoolErr := c.spool.Write(ctx, sample)
			if spoolErr == nil {
				c.log.Warn().Err(serr).Time("timestamp", sample.Timestamp).Msg("Store write failed, sample spooled for retry")
				return
			}
			c.log.Error().Err(spoolErr).Msg("Failed to spool sample")
		}
		c.log.Error().Err(serr).Time("timestamp", sample.Timestamp).Msg("Store write failed, sample dropped")
		return
	}

	metrics.RecordSamplesStored(models.SourceStream, 1)
	c.refresher.RequestRefresh(ctx, c.vesselID, models.SourceStream, 1)
}

// closeConnection sends a close frame and closes the socket. Safe to call
// concurrently with a blocked read.
func (c *StreamClient) closeConnection() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	_ = c.conn.Close()
	c.conn = nil
}

// newStreamBackOff returns a deterministic doubling backoff that never
// gives up.
func newStreamBackOff(initial, maxInterval time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2
	b.MaxInterval = maxInterval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// sleepContext waits for d or until ctx is done, reporting whether the
// full duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
