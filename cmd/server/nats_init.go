// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/config"
	"github.com/mvail/scrollforge/internal/events"
)

// initNATS attaches the external NATS mirror to the bus when enabled. The
// returned cleanup shuts the publisher and, when embedded, the server down.
// Build without the nats tag, enabling NATS is a startup error.
func initNATS(cfg *config.Config, bus *events.Bus, logger zerolog.Logger) (func(), error) {
	if !cfg.Events.NATSEnabled {
		return func() {}, nil
	}
	if !events.NATSAvailable {
		return nil, fmt.Errorf("events.nats_enabled is set but this binary was built without the nats tag")
	}

	url := cfg.Events.NATSURL
	var embedded *events.EmbeddedServer
	if cfg.Events.NATSEmbedded {
		srv, err := events.StartEmbeddedServer(cfg.Events.NATSStoreDir)
		if err != nil {
			return nil, fmt.Errorf("start embedded nats: %w", err)
		}
		embedded = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	publisher, err := events.NewNATSPublisher(url, cfg.Events, logger)
	if err != nil {
		if embedded != nil {
			_ = embedded.Shutdown(context.Background())
		}
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}
	bus.AttachExternal(publisher)
	logger.Info().Str("url", url).Msg("NATS mirror attached")

	return func() {
		if embedded != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := embedded.Shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("embedded NATS shutdown failed")
			}
		}
	}, nil
}
