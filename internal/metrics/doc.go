// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package metrics defines the Prometheus instrumentation for the engine,
// the HTTP API, the event bus, and the store. All collectors register on
// the default registry via promauto and are exported at /metrics.
package metrics
