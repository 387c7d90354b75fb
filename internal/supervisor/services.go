// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/engine"
)

// HTTPServer matches the *http.Server lifecycle methods the service needs.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts http.Server's blocking ListenAndServe to suture's
// context-aware Serve: listen in a goroutine, shut down gracefully on
// cancellation.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPService wraps an HTTP server as a supervised service.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. http.ErrServerClosed is the expected
// outcome of a graceful shutdown and is not treated as a failure.
func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The original context is already canceled; shutdown gets its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *HTTPService) String() string { return "http-server" }

// EvictorService periodically removes sessions idle longer than MaxIdle.
type EvictorService struct {
	manager  *engine.Manager
	maxIdle  time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

// NewEvictorService creates the idle-session evictor.
func NewEvictorService(manager *engine.Manager, maxIdle, interval time.Duration, logger zerolog.Logger) *EvictorService {
	return &EvictorService{
		manager:  manager,
		maxIdle:  maxIdle,
		interval: interval,
		logger:   logger.With().Str("component", "evictor").Logger(),
	}
}

// Serve implements suture.Service.
func (e *EvictorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if evicted := e.manager.EvictIdle(e.maxIdle, time.Now()); evicted > 0 {
				e.logger.Info().Int("evicted", evicted).Msg("idle sessions evicted")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (e *EvictorService) String() string { return "session-evictor" }

// FuncService runs a context-bound function as a supervised service. Used
// for loops that already take a context, like the store's GC.
type FuncService struct {
	name string
	run  func(ctx context.Context) error
}

// NewFuncService wraps a run function.
func NewFuncService(name string, run func(ctx context.Context) error) *FuncService {
	return &FuncService{name: name, run: run}
}

// Serve implements suture.Service.
func (f *FuncService) Serve(ctx context.Context) error {
	return f.run(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (f *FuncService) String() string { return f.name }
