// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the engagement engine:
// - visibility event processing latency
// - churn score distribution and interventions
// - content generation and feed materialization
// - session lifecycle and API surface

var (
	// Engine metrics
	VisibilityEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_visibility_events_total",
			Help: "Total number of item-visibility events processed",
		},
	)

	VisibilityEventDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_visibility_event_duration_seconds",
			Help:    "Processing time of a single visibility event",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	ChurnScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_churn_score",
			Help:    "Distribution of churn probabilities produced by the predictor",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	Interventions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_interventions_total",
			Help: "Total number of interventions fired",
		},
		[]string{"kind"}, // "inject_reward", "haptic", "sound", "social_proof"
	)

	InterventionsDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_interventions_degraded_total",
			Help: "Interventions that fired without content injection (no eligible slot or locked reward)",
		},
	)

	Unlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_unlocks_total",
			Help: "Total number of first-sighting unlocks",
		},
		[]string{"tier"},
	)

	BatchesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_batches_generated_total",
			Help: "Total number of procedurally generated content batches",
		},
	)

	SlotsMaterialized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_slots_materialized_total",
			Help: "Feed slots materialized by the rarity sampler",
		},
		[]string{"tier"},
	)

	// Session lifecycle metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_active_sessions",
			Help: "Current number of live engagement sessions",
		},
	)

	SessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_sessions_evicted_total",
			Help: "Sessions evicted after the idle timeout",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// Event bus metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Engine events published to the bus",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_publish_errors_total",
			Help: "Failed event publications",
		},
		[]string{"topic"},
	)

	// Store metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Badger store operations",
		},
		[]string{"operation", "status"}, // operation: "put", "get", "scan", "gc"
	)
)

// ObserveVisibilityEvent records one processed visibility event.
func ObserveVisibilityEvent(start time.Time) {
	VisibilityEvents.Inc()
	VisibilityEventDuration.Observe(time.Since(start).Seconds())
}

// RecordIntervention increments the per-kind intervention counters.
func RecordIntervention(kinds []string) {
	for _, k := range kinds {
		Interventions.WithLabelValues(k).Inc()
	}
}
