// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package engine implements the engagement engine behind an infinite-scroll
// content feed: it decides what appears next, tracks behavioral signals in
// real time, predicts disengagement, and reacts by injecting rewards.
//
// # Architecture
//
// Three coupled, stateful algorithms drive the engine:
//
//   - Content Generator: deterministic procedural batches seeded from a
//     hash of user behavior (rng + hash + generator)
//   - Churn Prediction: rolling-window scroll telemetry scored by a
//     pluggable, stateless predictor (tracker + predictor)
//   - Rarity Sampling: a progress-gated probability distribution over
//     content tiers with unlock invariants (rarity + catalog)
//
// The Scheduler thresholds churn probability, enforces a view-count
// cooldown, and mutates upcoming feed slots to inject rewards. A Session
// binds everything together for one user; a Manager isolates sessions.
//
// # Determinism
//
// All generated content is derivable from a 64-bit seed: same seed, same
// batch, on every platform. Seeds come exclusively from hashing behavior
// snapshots (SnapshotSeed); callers never hand-pick seeds. Persisted batch
// records store only the seed and metadata, and DeriveItems reconstructs
// the item list on demand.
//
// # Concurrency
//
// Every session is logically single-threaded: the session lock serializes
// visibility events, and each event runs to completion before the next is
// accepted. Timestamps are read once per event and reused throughout. The
// engine performs no I/O and no operation blocks; output reaches
// collaborators through the EventSink interface.
//
// # Error Handling
//
// The core is total: degenerate inputs resolve to safe defaults (default
// velocity and trend for short windows, placeholder fallback for empty
// catalogs, silent degradation for impossible injections) rather than
// propagating errors. Construction-time wiring is the only failure point.
package engine
