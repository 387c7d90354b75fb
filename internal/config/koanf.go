// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file search order; the first file
// found wins.
var DefaultConfigPaths = []string{
	"scrollforge.yaml",
	"scrollforge.yml",
	"/etc/scrollforge/config.yaml",
	"/etc/scrollforge/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "SCROLLFORGE_CONFIG"

// envPrefix is stripped from environment variables before mapping.
const envPrefix = "SCROLLFORGE_"

// Load builds the configuration from layered sources:
//  1. built-in defaults
//  2. the first config file found (optional)
//  3. SCROLLFORGE_-prefixed environment variables
//
// Later layers override earlier ones. The result is validated before
// being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := normalizeSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are fields that may arrive as comma-separated strings
// from the environment but unmarshal as slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func normalizeSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransform maps environment variable names (prefix already stripped)
// to koanf config paths. Unmapped variables are dropped so unrelated
// environment noise never reaches the config.
//
// Examples:
//   - SCROLLFORGE_HTTP_PORT      -> server.port
//   - SCROLLFORGE_LOG_LEVEL      -> logging.level
//   - SCROLLFORGE_STORE_PATH     -> store.path
//   - SCROLLFORGE_CHURN_THRESHOLD -> engine.scheduler.threshold
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Server
		"http_host":          "server.host",
		"http_port":          "server.port",
		"http_read_timeout":  "server.read_timeout",
		"http_write_timeout": "server.write_timeout",
		"shutdown_timeout":   "server.shutdown_timeout",
		"cors_origins":       "server.cors_origins",
		"rate_limit_reqs":    "server.rate_limit_reqs",
		"rate_limit_window":  "server.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Sessions
		"session_max_idle":       "sessions.max_idle",
		"session_evict_interval": "sessions.evict_interval",
		"stream_events_per_sec":  "sessions.stream_events_per_second",
		"stream_burst":           "sessions.stream_burst",

		// Store
		"store_path":        "store.path",
		"store_in_memory":   "store.in_memory",
		"store_gc_interval": "store.gc_interval",

		// Events
		"nats_enabled":     "events.nats_enabled",
		"nats_url":         "events.nats_url",
		"nats_embedded":    "events.nats_embedded",
		"nats_store_dir":   "events.nats_store_dir",
		"breaker_failures": "events.breaker_failures",
		"breaker_timeout":  "events.breaker_timeout",

		// Engine knobs exposed to operators. The full engine config is
		// available through the YAML file; the environment covers the
		// handful worth flipping per deployment.
		"predictor":       "engine.predictor",
		"lookahead":       "engine.lookahead",
		"active_gap_secs": "engine.active_gap_seconds",
		"churn_threshold": "engine.scheduler.threshold",
		"churn_full_set":  "engine.scheduler.full_set_bound",
		"cooldown_views":  "engine.scheduler.cooldown_views",
		"rarity_seed":     "engine.rarity.seed",
		"mono_threshold":  "engine.rarity.mono_threshold",
		"boost_window":    "engine.rarity.boost_window_views",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
