// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package websocket streams engine events to connected clients. Each client
// subscribes to a single session; the hub bridges the bus topics to the
// clients interested in that session.
package websocket

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/events"
)

// Message types sent to clients.
const (
	MessageTypeBatch        = "batch_generated"
	MessageTypeIntervention = "intervention"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is one frame on the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans bus events out to websocket clients. Clients register with the
// session ID they follow; events for other sessions are not delivered.
//
// done is closed when Serve exits so that client goroutines and pending
// registrations never block on a stopped hub.
type Hub struct {
	bus    *events.Bus
	logger zerolog.Logger

	Register   chan *Client
	Unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	clients map[string]map[*Client]bool // session ID -> clients
}

// NewHub creates a hub over the given bus.
func NewHub(bus *events.Bus, logger zerolog.Logger) *Hub {
	return &Hub{
		bus:        bus,
		logger:     logger.With().Str("component", "websocket").Logger(),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
	}
}

// Serve runs the hub until ctx is canceled. It subscribes to both bus
// topics and routes each event to the clients following its session.
// Implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	batches, err := h.bus.Subscribe(ctx, events.TopicBatches)
	if err != nil {
		return err
	}
	interventions, err := h.bus.Subscribe(ctx, events.TopicInterventions)
	if err != nil {
		return err
	}

	h.logger.Info().Msg("websocket hub started")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("websocket hub stopping")
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case msg, ok := <-batches:
			if !ok {
				return nil
			}
			h.route(msg, MessageTypeBatch)

		case msg, ok := <-interventions:
			if !ok {
				return nil
			}
			h.route(msg, MessageTypeIntervention)
		}
	}
}

// route delivers one bus message to the clients following its session.
// Only the session ID is decoded here; the payload travels as-is.
func (h *Hub) route(msg *message.Message, messageType string) {
	defer msg.Ack()

	var envelope struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		h.logger.Error().Err(err).Str("type", messageType).Msg("undecodable bus event")
		return
	}

	frame := Message{Type: messageType, Data: json.RawMessage(msg.Payload)}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[envelope.SessionID] {
		client.Deliver(frame)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*Client]bool)
	}
	h.clients[client.sessionID][client] = true
	total := h.totalLocked()
	h.mu.Unlock()

	h.logger.Info().
		Str("session_id", client.sessionID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if set, ok := h.clients[client.sessionID]; ok && set[client] {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.sessionID)
		}
		client.close()
	}
	total := h.totalLocked()
	h.mu.Unlock()

	h.logger.Info().
		Str("session_id", client.sessionID).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// shutdown marks the hub stopped and releases every client.
func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			client.close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalLocked()
}

func (h *Hub) totalLocked() int {
	total := 0
	for _, set := range h.clients {
		total += len(set)
	}
	return total
}
