// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/lensatlas/lensatlas/internal/events"
)

func dialTestServer(t *testing.T, h *Handler) *gws.Conn {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *gws.Conn) events.Event {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	var ev events.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return ev
}

func TestHandlerSendsConnectedFirst(t *testing.T) {
	broadcaster := events.NewBroadcaster(16)
	defer broadcaster.Close()

	conn := dialTestServer(t, NewHandler(broadcaster, time.Minute))

	ev := readEvent(t, conn)
	if ev.Type != events.TypeConnected {
		t.Errorf("first event type = %s, want connected", ev.Type)
	}
}

func TestHandlerStreamsProgressEvents(t *testing.T) {
	broadcaster := events.NewBroadcaster(16)
	defer broadcaster.Close()

	conn := dialTestServer(t, NewHandler(broadcaster, time.Minute))

	if ev := readEvent(t, conn); ev.Type != events.TypeConnected {
		t.Fatalf("first event type = %s, want connected", ev.Type)
	}

	deadline := time.Now().Add(2 * time.Second)
	for broadcaster.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	data := events.NewProgressData("batch-1", "running", 10, 2, 1)
	broadcaster.Broadcast(events.Event{Type: events.TypeProgress, Data: data})

	ev := readEvent(t, conn)
	if ev.Type != events.TypeProgress {
		t.Fatalf("event type = %s, want progress", ev.Type)
	}
	payload, ok := ev.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("event data = %T, want object", ev.Data)
	}
	if payload["batch_id"] != "batch-1" {
		t.Errorf("batch_id = %v, want batch-1", payload["batch_id"])
	}
	if payload["processed_files"] != float64(10) {
		t.Errorf("processed_files = %v, want 10", payload["processed_files"])
	}
}

func TestHandlerHeartbeat(t *testing.T) {
	broadcaster := events.NewBroadcaster(16)
	defer broadcaster.Close()

	conn := dialTestServer(t, NewHandler(broadcaster, 25*time.Millisecond))

	if ev := readEvent(t, conn); ev.Type != events.TypeConnected {
		t.Fatalf("first event type = %s, want connected", ev.Type)
	}

	ev := readEvent(t, conn)
	if ev.Type != events.TypeHeartbeat {
		t.Errorf("event type = %s, want heartbeat", ev.Type)
	}
}

func TestHandlerKeepsIdleClientAlive(t *testing.T) {
	broadcaster := events.NewBroadcaster(16)
	defer broadcaster.Close()

	h := NewHandler(broadcaster, 50*time.Millisecond)
	h.pongWait = 200 * time.Millisecond
	h.pingPeriod = (h.pongWait * 9) / 10

	conn := dialTestServer(t, h)

	// The dialer's default ping handler answers with a pong; count the pings
	// so we know the server actually refreshed the read deadline.
	pings := 0
	defaultPing := conn.PingHandler()
	conn.SetPingHandler(func(data string) error {
		pings++
		return defaultPing(data)
	})

	// A listen-only client must survive well past the read deadline.
	stop := time.Now().Add(3 * h.pongWait)
	for time.Now().Before(stop) {
		if err := conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			t.Fatalf("SetReadDeadline() error = %v", err)
		}
		var ev events.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON() error = %v before deadline elapsed", err)
		}
	}
	if pings == 0 {
		t.Error("received no ping control frames, want at least one")
	}
}

func TestHandlerUnsubscribesOnDisconnect(t *testing.T) {
	broadcaster := events.NewBroadcaster(16)
	defer broadcaster.Close()

	conn := dialTestServer(t, NewHandler(broadcaster, time.Minute))
	if ev := readEvent(t, conn); ev.Type != events.TypeConnected {
		t.Fatalf("first event type = %s, want connected", ev.Type)
	}

	deadline := time.Now().Add(2 * time.Second)
	for broadcaster.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_ = conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for broadcaster.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("SubscriberCount() = %d after disconnect, want 0", broadcaster.SubscriberCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandlerClosesWhenBroadcasterShutsDown(t *testing.T) {
	broadcaster := events.NewBroadcaster(16)

	conn := dialTestServer(t, NewHandler(broadcaster, time.Minute))
	if ev := readEvent(t, conn); ev.Type != events.TypeConnected {
		t.Fatalf("first event type = %s, want connected", ev.Type)
	}

	broadcaster.Close()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	var ev events.Event
	err := conn.ReadJSON(&ev)
	if err == nil {
		t.Fatal("expected close after broadcaster shutdown, got event")
	}
	if !gws.IsCloseError(err, gws.CloseGoingAway) {
		t.Errorf("close error = %v, want going-away", err)
	}
}
