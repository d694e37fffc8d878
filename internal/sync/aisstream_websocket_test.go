// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/vesseltrack/internal/config"
)

// mockFeed is a WebSocket server that reads the subscription frame and
// then hands the connection to a per-test behavior.
type mockFeed struct {
	server      *httptest.Server
	upgrader    websocket.Upgrader
	behavior    func(conn *websocket.Conn)
	connections atomic.Int32

	mu   sync.Mutex
	subs []SubscriptionRequest
}

func newMockFeed(t *testing.T, behavior func(conn *websocket.Conn)) *mockFeed {
	t.Helper()
	f := &mockFeed{behavior: behavior}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *mockFeed) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	f.connections.Add(1)

	var sub SubscriptionRequest
	if err := conn.ReadJSON(&sub); err != nil {
		return
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()

	f.behavior(conn)
}

func (f *mockFeed) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *mockFeed) subscriptions() []SubscriptionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SubscriptionRequest(nil), f.subs...)
}

// holdOpen keeps the connection until the client closes it.
func holdOpen(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// delayRecorder is a reconnect sleeper that records requested delays and
// stops the client after limit waits.
type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	limit  int
	done   chan struct{}
}

func newDelayRecorder(limit int) *delayRecorder {
	return &delayRecorder{limit: limit, done: make(chan struct{})}
}

func (r *delayRecorder) wait(_ context.Context, d time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	if len(r.delays) >= r.limit {
		close(r.done)
		return false
	}
	return true
}

func (r *delayRecorder) recorded(t *testing.T) []time.Duration {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for reconnect attempts")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func testStreamConfig(url string) *config.AISStreamConfig {
	return &config.AISStreamConfig{
		Enabled:        true,
		URL:            url,
		APIKey:         "test-key",
		ReceiveTimeout: 5 * time.Second,
		InitialBackoff: time.Second,
		MaxBackoff:     60 * time.Second,
	}
}

func TestStreamClient_StoresPositionReports(t *testing.T) {
	feed := newMockFeed(t, func(conn *websocket.Conn) {
		frames := [][]byte{
			positionReportFrame(352594000, "2026-01-05 17:45:11.000000 +0000 UTC", nil),
			[]byte(`{"MessageType":"ShipStaticData","Message":{},"MetaData":{"MMSI":352594000}}`),
			[]byte(`{not json`),
			positionReportFrame(211000000, "2026-01-05 17:45:20.000000 +0000 UTC", nil),
			positionReportFrame(352594000, "2026-01-05 17:46:11.000000 +0000 UTC", reportFields{"TrueHeading": 511}),
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		holdOpen(conn)
	})

	store := newMemoryStore()
	refresher := &recordingRefresher{}
	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, store, WithStreamRefresher(refresher))

	if client.State() != StateIdle {
		t.Errorf("initial state = %s, want idle", client.State())
	}

	checkNoError(t, client.Start(context.Background()))
	waitFor(t, 5*time.Second, "two stored samples", func() bool { return store.count() == 2 })
	waitFor(t, 5*time.Second, "receiving state", func() bool { return client.State() == StateReceiving })

	client.Stop()
	if client.State() != StateStopped {
		t.Errorf("state after Stop = %s, want stopped", client.State())
	}

	samples := store.all()
	checkTimeEqual(t, "first timestamp", samples[0].Timestamp, time.Date(2026, 1, 5, 17, 45, 11, 0, time.UTC))
	checkTimeEqual(t, "second timestamp", samples[1].Timestamp, time.Date(2026, 1, 5, 17, 46, 11, 0, time.UTC))
	if samples[1].Heading == nil || *samples[1].Heading != 511 {
		t.Errorf("second sample heading = %v, want 511", samples[1].Heading)
	}
	checkIntEqual(t, "refresh requests", refresher.count(), 2)

	subs := feed.subscriptions()
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}
	want := NewSubscriptionRequest("test-key", testVesselID)
	if !reflect.DeepEqual(subs[0], want) {
		t.Errorf("subscription = %+v, want %+v", subs[0], want)
	}
}

func TestStreamClient_StartTwice(t *testing.T) {
	feed := newMockFeed(t, holdOpen)
	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, newMemoryStore())

	checkNoError(t, client.Start(context.Background()))
	defer client.Stop()

	if err := client.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}
}

func TestStreamClient_StopWhileConnected(t *testing.T) {
	feed := newMockFeed(t, holdOpen)
	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, newMemoryStore())

	checkNoError(t, client.Start(context.Background()))
	waitFor(t, 5*time.Second, "subscribed state", func() bool { return client.State() == StateSubscribed })

	stopped := make(chan struct{})
	go func() {
		client.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop() did not return while a read was blocked")
	}
	if client.State() != StateStopped {
		t.Errorf("state = %s, want stopped", client.State())
	}

	client.Stop()
}

func TestStreamClient_StopBeforeStart(t *testing.T) {
	client := NewStreamClient(testStreamConfig("ws://127.0.0.1:1"), testVesselID, newMemoryStore())
	client.Stop()
	if client.State() != StateIdle {
		t.Errorf("state = %s, want idle", client.State())
	}
}

func TestStreamClient_BackoffDoublesToCap(t *testing.T) {
	feed := newMockFeed(t, holdOpen)
	deadURL := feed.url()
	feed.server.Close()

	recorder := newDelayRecorder(8)
	client := NewStreamClient(testStreamConfig(deadURL), testVesselID, newMemoryStore(), WithStreamWait(recorder.wait))
	checkNoError(t, client.Start(context.Background()))
	defer client.Stop()

	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 32 * time.Second, 60 * time.Second, 60 * time.Second,
	}
	if got := recorder.recorded(t); !reflect.DeepEqual(got, want) {
		t.Errorf("delays = %v, want %v", got, want)
	}
}

func TestStreamClient_BackoffNotResetByHandshake(t *testing.T) {
	// Accept and subscribe, then drop the connection without sending.
	feed := newMockFeed(t, func(*websocket.Conn) {})

	recorder := newDelayRecorder(4)
	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, newMemoryStore(), WithStreamWait(recorder.wait))
	checkNoError(t, client.Start(context.Background()))
	defer client.Stop()

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if got := recorder.recorded(t); !reflect.DeepEqual(got, want) {
		t.Errorf("delays = %v, want %v", got, want)
	}
	if n := feed.connections.Load(); n < 4 {
		t.Errorf("connections = %d, want at least 4", n)
	}
}

func TestStreamClient_BackoffResetAfterMessage(t *testing.T) {
	// Every connection delivers one report and then drops.
	feed := newMockFeed(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, positionReportFrame(352594000, testTimeUTC, nil))
		time.Sleep(50 * time.Millisecond)
	})

	recorder := newDelayRecorder(3)
	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, newMemoryStore(), WithStreamWait(recorder.wait))
	checkNoError(t, client.Start(context.Background()))
	defer client.Stop()

	want := []time.Duration{time.Second, time.Second, time.Second}
	if got := recorder.recorded(t); !reflect.DeepEqual(got, want) {
		t.Errorf("delays = %v, want %v", got, want)
	}
}

func TestStreamClient_ReceiveTimeout(t *testing.T) {
	feed := newMockFeed(t, holdOpen)

	cfg := testStreamConfig(feed.url())
	cfg.ReceiveTimeout = 100 * time.Millisecond

	recorder := newDelayRecorder(1)
	client := NewStreamClient(cfg, testVesselID, newMemoryStore(), WithStreamWait(recorder.wait))
	checkNoError(t, client.Start(context.Background()))
	defer client.Stop()

	got := recorder.recorded(t)
	if len(got) != 1 || got[0] != time.Second {
		t.Errorf("delays = %v, want [1s]", got)
	}
}

func TestStreamClient_StorageFailureSpooled(t *testing.T) {
	feed := newMockFeed(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, positionReportFrame(352594000, testTimeUTC, nil))
		holdOpen(conn)
	})

	store := newMemoryStore()
	store.appendErr = errors.New("database is locked")
	spool := &recordingSpool{}
	refresher := &recordingRefresher{}

	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, store,
		WithStreamSpool(spool), WithStreamRefresher(refresher))
	checkNoError(t, client.Start(context.Background()))
	waitFor(t, 5*time.Second, "spooled sample", func() bool { return spool.count() == 1 })
	client.Stop()

	checkIntEqual(t, "stored", store.count(), 0)
	checkIntEqual(t, "refresh requests", refresher.count(), 0)
}

func TestStreamClient_StorageFailureWithoutSpool(t *testing.T) {
	feed := newMockFeed(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, positionReportFrame(352594000, testTimeUTC, nil))
		_ = conn.WriteMessage(websocket.TextMessage, positionReportFrame(352594000, "2026-01-05 17:50:00.0 +0000 UTC", nil))
		holdOpen(conn)
	})

	store := newMemoryStore()
	store.appendErr = errors.New("database is locked")

	client := NewStreamClient(testStreamConfig(feed.url()), testVesselID, store)
	checkNoError(t, client.Start(context.Background()))

	// The connection survives storage failures, so both messages are attempted.
	waitFor(t, 5*time.Second, "two append attempts", func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.appendCalls == 2
	})
	if client.State() != StateReceiving {
		t.Errorf("state = %s, want receiving", client.State())
	}
	client.Stop()
}

func TestStreamState_String(t *testing.T) {
	states := map[StreamState]string{
		StateIdle:         "idle",
		StateConnecting:   "connecting",
		StateSubscribed:   "subscribed",
		StateReceiving:    "receiving",
		StateReconnecting: "reconnecting",
		StateStopped:      "stopped",
		StreamState(99):   "unknown",
	}
	for state, want := range states {
		checkStringEqual(t, "state", state.String(), want)
	}
}

func TestNewStreamBackOff(t *testing.T) {
	b := newStreamBackOff(time.Second, 60*time.Second)
	for i, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		if got := b.NextBackOff(); got != want {
			t.Errorf("attempt %d: NextBackOff() = %v, want %v", i, got, want)
		}
	}
	b.Reset()
	if got := b.NextBackOff(); got != time.Second {
		t.Errorf("after Reset, NextBackOff() = %v, want 1s", got)
	}
}
