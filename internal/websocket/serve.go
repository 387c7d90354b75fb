// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mvail/scrollforge/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware in front of
	// the router; the upgrader itself accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamLimits bounds per-client delivery.
type StreamLimits struct {
	EventsPerSecond float64
	Burst           int
}

// ServeWS upgrades the request and attaches a client to the hub.
func ServeWS(hub *Hub, limits StreamLimits, sessionID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(hub, conn, sessionID, limits.EventsPerSecond, limits.Burst)
	select {
	case hub.Register <- client:
	case <-hub.done:
		// Hub already stopped; the upgraded connection has no server.
		_ = conn.Close()
		return
	}
	client.Start()
}
