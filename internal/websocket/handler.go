// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lensatlas/lensatlas/internal/events"
	"github.com/lensatlas/lensatlas/internal/logging"
	"github.com/lensatlas/lensatlas/internal/metrics"
)

const (
	writeWait       = 10 * time.Second
	defaultPongWait = 60 * time.Second
	maxMessageSize  = 4 * 1024
)

// Handler upgrades HTTP requests and streams broadcaster events to clients.
type Handler struct {
	broadcaster *events.Broadcaster
	upgrader    websocket.Upgrader
	heartbeat   time.Duration
	pongWait    time.Duration
	pingPeriod  time.Duration
}

// NewHandler builds a WebSocket handler. heartbeat is the interval between
// heartbeat events on an otherwise idle connection.
func NewHandler(broadcaster *events.Broadcaster, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	pongWait := defaultPongWait
	return &Handler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement happens in the CORS middleware upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		heartbeat:  heartbeat,
		pongWait:   pongWait,
		pingPeriod: (pongWait * 9) / 10,
	}
}

// ServeHTTP upgrades the connection and pumps events until the client
// disconnects, falls behind, or the broadcaster shuts down.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	metrics.WSConnections.Inc()
	logging.Info().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	sub := h.broadcaster.Subscribe()
	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, sub, done)

	h.broadcaster.Unsubscribe(sub)
	_ = conn.Close()
	metrics.WSConnections.Dec()
	logging.Info().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
}

// readPump drains inbound frames so close and pong frames are processed.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(h.pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
	}
}

// writePump streams subscription events, heartbeats, and ping control frames
// until the client or broadcaster goes away. Pings must go out faster than
// the read deadline expires, or idle clients get torn down.
func (h *Handler) writePump(conn *websocket.Conn, sub *events.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	pinger := time.NewTicker(h.pingPeriod)
	defer pinger.Stop()

	if err := h.writeEvent(conn, events.Event{Type: events.TypeConnected}); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				// Evicted or broadcaster closed.
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription closed"))
				return
			}
			if err := h.writeEvent(conn, ev); err != nil {
				return
			}

		case <-ticker.C:
			if err := h.writeEvent(conn, events.Event{Type: events.TypeHeartbeat}); err != nil {
				return
			}

		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

func (h *Handler) writeEvent(conn *websocket.Conn, ev events.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(ev); err != nil {
		logging.Debug().Err(err).Str("event_type", ev.Type).Msg("websocket write failed")
		return err
	}
	metrics.WSMessagesSent.Inc()
	return nil
}
