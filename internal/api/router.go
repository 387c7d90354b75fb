// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvail/scrollforge/internal/config"
	"github.com/mvail/scrollforge/internal/websocket"
)

// NewRouter builds the chi route tree. The hub may be nil, in which case
// the stream endpoint responds 503.
func NewRouter(h *Handler, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recovererMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Operational endpoints, outside the rate limit.
	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Zero disables rate limiting; httprate.Limit(0, ...) would
		// reject every request.
		if cfg.Server.RateLimitReqs > 0 {
			r.Use(httprate.Limit(
				cfg.Server.RateLimitReqs,
				cfg.Server.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}

		r.Post("/sessions", h.createSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)
			r.Post("/visible", h.postVisible)
			r.Get("/feed", h.getFeed)
			r.Get("/stats", h.getStats)
			r.Get("/batches", h.getBatches)
			r.Get("/stream", streamHandler(h, hub, cfg.Sessions))
		})
	})

	return r
}

// streamHandler upgrades to a websocket following one session's events.
func streamHandler(h *Handler, hub *websocket.Hub, cfg config.SessionsConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			writeError(w, r, http.StatusServiceUnavailable, ErrCodeInternalError, "event streaming is not enabled")
			return
		}
		sess, ok := h.session(w, r)
		if !ok {
			return
		}
		limits := websocket.StreamLimits{
			EventsPerSecond: cfg.StreamEventsPerSecond,
			Burst:           cfg.StreamBurst,
		}
		websocket.ServeWS(hub, limits, sess.ID(), w, r)
	}
}
