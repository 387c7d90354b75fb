// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import "math"

// FNV-1a 64-bit parameters.
const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// SnapshotSeed collapses a behavior snapshot into a 64-bit generator seed.
//
// Every field participates, in a fixed order, so two snapshots differing in
// any single field produce different seeds with high probability. Floats are
// folded via their raw bit patterns rather than their decimal value; this
// keeps NaN and denormal inputs stable across platforms. This function is
// the sole seed source for the content generator.
func SnapshotSeed(s BehaviorSnapshot) uint64 {
	h := fnvOffset
	h = foldUint64(h, uint64(int64(s.TotalViews)))
	h = foldUint64(h, uint64(int64(s.UniqueViews)))
	h = foldUint64(h, math.Float64bits(s.ActiveSeconds))
	h = foldUint64(h, math.Float64bits(s.SessionSeconds))
	h = foldUint64(h, uint64(int64(s.ScrollPosition)))
	h = foldUint64(h, uint64(int64(s.TimeBucket)))
	h = foldUint64(h, math.Float64bits(s.Weights.Mono))
	h = foldUint64(h, math.Float64bits(s.Weights.Common))
	h = foldUint64(h, math.Float64bits(s.Weights.Rare))
	h = foldUint64(h, math.Float64bits(s.Weights.Special))
	h = foldString(h, s.TriggerItemID)
	return h
}

// foldUint64 accumulates one 64-bit word byte-by-byte, FNV-1a style.
func foldUint64(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= v & 0xFF
		h *= fnvPrime
		v >>= 8
	}
	return h
}

// foldString accumulates a string including its length, so adjacent string
// fields cannot alias across boundaries.
func foldString(h uint64, s string) uint64 {
	h = foldUint64(h, uint64(len(s)))
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}
