// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package config loads and validates Scrollforge configuration from
// layered sources: built-in defaults, an optional YAML file, then
// SCROLLFORGE_-prefixed environment variables, highest priority last.
package config

import (
	"fmt"
	"time"

	"github.com/mvail/scrollforge/internal/engine"
)

// Config is the full Scrollforge server configuration.
type Config struct {
	Server   ServerConfig   `json:"server" koanf:"server"`
	Logging  LoggingConfig  `json:"logging" koanf:"logging"`
	Engine   *engine.Config `json:"engine" koanf:"engine"`
	Sessions SessionsConfig `json:"sessions" koanf:"sessions"`
	Store    StoreConfig    `json:"store" koanf:"store"`
	Events   EventsConfig   `json:"events" koanf:"events"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address. Default: 0.0.0.0.
	Host string `json:"host" koanf:"host"`

	// Port is the listen port. Default: 8470.
	Port int `json:"port" koanf:"port"`

	// ReadTimeout and WriteTimeout bound request processing.
	// Defaults: 15s, 15s.
	ReadTimeout  time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 20s.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`

	// CORSOrigins is the allowed origin list. Default: ["*"].
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	// Defaults: 300 per minute. Zero requests disables rate limiting.
	RateLimitReqs   int           `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level. Default: info.
	Level string `json:"level" koanf:"level"`

	// Format is json or console. Default: json.
	Format string `json:"format" koanf:"format"`

	// Caller includes caller file and line. Default: false.
	Caller bool `json:"caller" koanf:"caller"`
}

// SessionsConfig holds session lifecycle and streaming settings.
type SessionsConfig struct {
	// MaxIdle is how long an untouched session survives. Default: 30m.
	MaxIdle time.Duration `json:"max_idle" koanf:"max_idle"`

	// EvictInterval is how often the idle sweep runs. Default: 1m.
	EvictInterval time.Duration `json:"evict_interval" koanf:"evict_interval"`

	// StreamEventsPerSecond throttles per-connection websocket visibility
	// events; StreamBurst is the token bucket size. Defaults: 30, 60.
	StreamEventsPerSecond float64 `json:"stream_events_per_second" koanf:"stream_events_per_second"`
	StreamBurst           int     `json:"stream_burst" koanf:"stream_burst"`
}

// StoreConfig holds the persistence settings for batch records and prior
// session aggregates.
type StoreConfig struct {
	// Path is the Badger database directory. Default: /data/scrollforge.
	Path string `json:"path" koanf:"path"`

	// InMemory runs the store without disk persistence, for tests and
	// ephemeral deployments. Default: false.
	InMemory bool `json:"in_memory" koanf:"in_memory"`

	// GCInterval is how often value-log garbage collection runs.
	// Default: 10m.
	GCInterval time.Duration `json:"gc_interval" koanf:"gc_interval"`
}

// EventsConfig holds the event bus settings. The in-process bus is always
// on; NATS publishing is optional and compiled behind the nats build tag.
type EventsConfig struct {
	// NATSEnabled turns on external publishing. Default: false.
	NATSEnabled bool `json:"nats_enabled" koanf:"nats_enabled"`

	// NATSURL is the server address. Default: nats://127.0.0.1:4222.
	NATSURL string `json:"nats_url" koanf:"nats_url"`

	// NATSEmbedded runs an embedded server instead of dialing out.
	// Default: true when NATS is enabled.
	NATSEmbedded bool `json:"nats_embedded" koanf:"nats_embedded"`

	// NATSStoreDir is the embedded server's JetStream directory.
	// Default: /data/nats.
	NATSStoreDir string `json:"nats_store_dir" koanf:"nats_store_dir"`

	// Breaker settings guard the external publisher. A publisher that
	// trips stays open for BreakerTimeout before a trial request.
	// Defaults: 5 consecutive failures, 30s.
	BreakerFailures int           `json:"breaker_failures" koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `json:"breaker_timeout" koanf:"breaker_timeout"`
}

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 20 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: engine.DefaultConfig(),
		Sessions: SessionsConfig{
			MaxIdle:               30 * time.Minute,
			EvictInterval:         time.Minute,
			StreamEventsPerSecond: 30,
			StreamBurst:           60,
		},
		Store: StoreConfig{
			Path:       "/data/scrollforge",
			GCInterval: 10 * time.Minute,
		},
		Events: EventsConfig{
			NATSEnabled:     false,
			NATSURL:         "nats://127.0.0.1:4222",
			NATSEmbedded:    true,
			NATSStoreDir:    "/data/nats",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server.rate_limit_reqs must be non-negative, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is on")
	}

	if c.Sessions.MaxIdle <= 0 {
		return fmt.Errorf("sessions.max_idle must be positive, got %s", c.Sessions.MaxIdle)
	}
	if c.Sessions.EvictInterval <= 0 {
		return fmt.Errorf("sessions.evict_interval must be positive, got %s", c.Sessions.EvictInterval)
	}
	if c.Sessions.StreamEventsPerSecond <= 0 {
		return fmt.Errorf("sessions.stream_events_per_second must be positive, got %f", c.Sessions.StreamEventsPerSecond)
	}
	if c.Sessions.StreamBurst < 1 {
		return fmt.Errorf("sessions.stream_burst must be positive, got %d", c.Sessions.StreamBurst)
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path must be set for a persistent store")
	}
	if c.Store.GCInterval <= 0 {
		return fmt.Errorf("store.gc_interval must be positive, got %s", c.Store.GCInterval)
	}

	if c.Events.NATSEnabled {
		if !c.Events.NATSEmbedded && c.Events.NATSURL == "" {
			return fmt.Errorf("events.nats_url must be set when dialing an external server")
		}
		if c.Events.BreakerFailures < 1 {
			return fmt.Errorf("events.breaker_failures must be positive, got %d", c.Events.BreakerFailures)
		}
		if c.Events.BreakerTimeout <= 0 {
			return fmt.Errorf("events.breaker_timeout must be positive, got %s", c.Events.BreakerTimeout)
		}
	}

	if c.Engine == nil {
		return fmt.Errorf("engine config missing")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	return nil
}
