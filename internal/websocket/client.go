// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mvail/scrollforge/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Client is the bridge between one websocket connection and the hub. Each
// client follows exactly one session. Outbound frames pass through a rate
// limiter; frames above the configured rate are dropped rather than queued,
// since a stale engagement event is worthless.
//
// The send channel is never closed; shutdown is signaled through done so a
// concurrent Deliver or pong enqueue can never hit a closed channel.
type Client struct {
	sessionID string
	hub       *Hub
	conn      *websocket.Conn
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
}

// NewClient creates a client following the given session. eventsPerSecond
// and burst bound the delivery rate; zero eventsPerSecond means unlimited.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, eventsPerSecond float64, burst int) *Client {
	limit := rate.Inf
	if eventsPerSecond > 0 {
		limit = rate.Limit(eventsPerSecond)
	}
	return &Client{
		sessionID: sessionID,
		hub:       hub,
		conn:      conn,
		send:      make(chan Message, sendBuffer),
		done:      make(chan struct{}),
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// close signals the pumps to stop. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Deliver queues a frame for this client, subject to the rate limiter.
// Non-blocking: a closed client or a full send buffer drops the frame.
func (c *Client) Deliver(frame Message) {
	if !c.limiter.Allow() {
		return
	}
	c.enqueue(frame)
}

func (c *Client) enqueue(frame Message) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- frame:
	default:
	}
}

// Start begins the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound frames. Clients only ever send pings; anything
// else is ignored. A read error unregisters the client. If the hub has
// already stopped, unregistration is skipped rather than blocked on.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close")
			}
			break
		}
		if msg.Type == MessageTypePing {
			c.enqueue(Message{Type: MessageTypePong})
		}
	}
}

// writePump writes queued frames and keepalive pings to the connection
// until the client is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				logging.Error().Err(err).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
