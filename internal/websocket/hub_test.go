// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/engine"
	"github.com/mvail/scrollforge/internal/events"
)

type hubFixture struct {
	bus    *events.Bus
	hub    *Hub
	server *httptest.Server
}

// newHubFixture starts a hub and an HTTP server whose path carries the
// session ID to follow, e.g. GET /stream/sess-1.
func newHubFixture(t *testing.T, limits StreamLimits) *hubFixture {
	t.Helper()

	bus := events.NewBus(zerolog.Nop())
	hub := NewHub(bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Serve(ctx)
	}()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimPrefix(r.URL.Path, "/stream/")
		ServeWS(hub, limits, sessionID, w, r)
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
		bus.Close()
	})
	return &hubFixture{bus: bus, hub: hub, server: server}
}

func (f *hubFixture) dial(t *testing.T, sessionID string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/stream/" + sessionID
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *gorilla.Conn) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return Message{Type: frame.Type, Data: frame.Data}
}

func TestHubDeliversBatchEvents(t *testing.T) {
	f := newHubFixture(t, StreamLimits{EventsPerSecond: 100, Burst: 100})
	conn := f.dial(t, "sess-1")
	waitForClients(t, f.hub, 1)

	rec := engine.BatchRecord{Seed: 77, TriggerItemID: "s-ember-vault", CreatedAt: time.Now().UTC()}
	f.bus.BatchInjected("sess-1", rec)

	frame := readFrame(t, conn)
	if frame.Type != MessageTypeBatch {
		t.Fatalf("frame type = %q, want %q", frame.Type, MessageTypeBatch)
	}
	event, err := events.UnmarshalBatch(frame.Data.(json.RawMessage))
	if err != nil {
		t.Fatal(err)
	}
	if event.SessionID != "sess-1" || event.Seed != 77 {
		t.Errorf("delivered event = %+v", event)
	}
}

func TestHubScopesBySession(t *testing.T) {
	f := newHubFixture(t, StreamLimits{EventsPerSecond: 100, Burst: 100})
	mine := f.dial(t, "sess-mine")
	other := f.dial(t, "sess-other")
	waitForClients(t, f.hub, 2)

	f.bus.InterventionFired("sess-mine", engine.InterventionDecision{
		Probability: 0.9,
		Triggered:   true,
		Kinds:       []engine.InterventionKind{engine.KindHaptic},
	})

	frame := readFrame(t, mine)
	if frame.Type != MessageTypeIntervention {
		t.Errorf("frame type = %q", frame.Type)
	}

	// The other session's client must stay silent.
	if err := other.SetReadDeadline(time.Now().Add(200 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	var stray Message
	if err := other.ReadJSON(&stray); err == nil {
		t.Errorf("foreign session received frame %+v", stray)
	}
}

func TestHubRateLimitsClient(t *testing.T) {
	f := newHubFixture(t, StreamLimits{EventsPerSecond: 1, Burst: 2})
	conn := f.dial(t, "sess-r")
	waitForClients(t, f.hub, 1)

	for i := 0; i < 20; i++ {
		f.bus.InterventionFired("sess-r", engine.InterventionDecision{
			Probability: 0.9,
			Triggered:   true,
			Kinds:       []engine.InterventionKind{engine.KindSound},
		})
	}

	received := 0
	for {
		if err := conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond)); err != nil {
			t.Fatal(err)
		}
		var frame Message
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		received++
	}
	// Burst of 2 plus at most a token or two refilled during the read loop.
	if received == 0 || received > 4 {
		t.Errorf("received %d frames past a burst-2 limiter", received)
	}
}

func TestHubPingPong(t *testing.T) {
	f := newHubFixture(t, StreamLimits{EventsPerSecond: 100, Burst: 100})
	conn := f.dial(t, "sess-p")
	waitForClients(t, f.hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	frame := readFrame(t, conn)
	if frame.Type != MessageTypePong {
		t.Errorf("frame type = %q, want pong", frame.Type)
	}
}

func TestHubShutdownReleasesClients(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	defer bus.Close()
	hub := NewHub(bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan struct{})
	go func() {
		defer close(served)
		_ = hub.Serve(ctx)
	}()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimPrefix(r.URL.Path, "/stream/")
		ServeWS(hub, StreamLimits{EventsPerSecond: 100, Burst: 100}, sessionID, w, r)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream/sess-z"
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	cancel()
	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count after shutdown = %d", hub.ClientCount())
	}

	// A ping racing the shutdown must not crash the server side; the
	// client just sees the connection close.
	_ = conn.WriteJSON(Message{Type: MessageTypePing})
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// A connection arriving after shutdown is closed instead of being
	// stranded on the register channel.
	late, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("late dial: %v", err)
	}
	defer late.Close()
	if err := late.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("late connection was accepted by a stopped hub")
	}
}

func TestHubClientDisconnect(t *testing.T) {
	f := newHubFixture(t, StreamLimits{EventsPerSecond: 100, Burst: 100})
	conn := f.dial(t, "sess-c")
	waitForClients(t, f.hub, 1)

	conn.Close()
	waitForClients(t, f.hub, 0)
}
