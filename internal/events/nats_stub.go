// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

//go:build !nats

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/config"
)

// NATSAvailable reports whether NATS support was compiled in.
const NATSAvailable = false

// EmbeddedServer is a stub for builds without NATS support.
type EmbeddedServer struct{}

// StartEmbeddedServer fails on builds without NATS support.
func StartEmbeddedServer(string) (*EmbeddedServer, error) {
	return nil, fmt.Errorf("NATS support not compiled (build with -tags nats)")
}

// ClientURL returns an empty URL on stub builds.
func (s *EmbeddedServer) ClientURL() string { return "" }

// Shutdown is a no-op on stub builds.
func (s *EmbeddedServer) Shutdown(context.Context) error { return nil }

// NewNATSPublisher fails on builds without NATS support.
func NewNATSPublisher(string, config.EventsConfig, zerolog.Logger) (message.Publisher, error) {
	return nil, fmt.Errorf("NATS support not compiled (build with -tags nats)")
}
