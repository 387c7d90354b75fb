// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package main is the entry point for the Scrollforge server.
//
// Scrollforge drives an infinite-scroll content feed: it samples rarity
// distributions per viewport event, predicts churn from rolling scroll
// behavior, schedules interventions, and procedurally generates content
// batches seeded from hashed behavior snapshots.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layering defaults, YAML file, SCROLLFORGE_ env
//  2. Logging: zerolog, global logger
//  3. Store: BadgerDB for batch records and prior aggregates
//  4. Event bus: Watermill in-process channel, NATS mirror when enabled
//  5. Session manager, websocket hub, HTTP router
//  6. Supervisor tree: storage, stream, and API layers under suture
//
// # Build tags
//
//	go build ./cmd/server              # in-process events only
//	go build -tags nats ./cmd/server   # adds the NATS JetStream mirror
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful stop: the HTTP server drains
// in-flight requests, the hub closes its clients, and the store closes
// after the tree has stopped.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvail/scrollforge/internal/api"
	"github.com/mvail/scrollforge/internal/config"
	"github.com/mvail/scrollforge/internal/engine"
	"github.com/mvail/scrollforge/internal/events"
	"github.com/mvail/scrollforge/internal/logging"
	"github.com/mvail/scrollforge/internal/store"
	"github.com/mvail/scrollforge/internal/supervisor"
	ws "github.com/mvail/scrollforge/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("predictor", cfg.Engine.Predictor).
		Bool("nats_enabled", cfg.Events.NATSEnabled).
		Bool("store_in_memory", cfg.Store.InMemory).
		Msg("starting scrollforge")

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing store")
		}
	}()

	bus := events.NewBus(logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing event bus")
		}
	}()

	natsCleanup, err := initNATS(cfg, bus, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize NATS")
	}
	defer natsCleanup()

	manager, err := engine.NewManager(cfg.Engine, logger, bus)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create session manager")
	}

	hub := ws.NewHub(bus, logger)
	handler := api.NewHandler(manager, st, logger)
	router := api.NewRouter(handler, hub, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(logger), treeCfg)

	tree.AddStorageService(supervisor.NewFuncService("store-gc", func(ctx context.Context) error {
		st.RunGC(ctx, cfg.Store.GCInterval)
		return ctx.Err()
	}))
	tree.AddStorageService(supervisor.NewEvictorService(manager, cfg.Sessions.MaxIdle, cfg.Sessions.EvictInterval, logger))
	tree.AddStreamService(hub)
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("scrollforge listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree stopped with error")
		reportUnstopped(tree)
		os.Exit(1)
	}

	reportUnstopped(tree)
	logging.Info().Msg("scrollforge stopped")
}

func reportUnstopped(tree *supervisor.Tree) {
	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil || len(unstopped) == 0 {
		return
	}
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service missed the shutdown timeout")
	}
}
