// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package rng provides a deterministic seeded pseudo-random generator.
//
// Every consumer owns its own Rand instance; there is no global state. The
// generator uses a splitmix64 mixing function so that adjacent seeds produce
// decorrelated streams. This matters because seeds are hashed from user
// behavior snapshots that often differ in a single counter.
//
// This is not a cryptographic generator. For secure randomness use
// crypto/rand.
package rng

import "math"

// Rand is a deterministic pseudo-random generator with 64 bits of state.
// It is not safe for concurrent use; each goroutine or session should own
// its own instance.
type Rand struct {
	state uint64
}

// New returns a generator initialized with the given seed.
func New(seed uint64) *Rand {
	return &Rand{state: seed}
}

// Seed reinitializes the generator state. The subsequent output stream is
// fully determined by the new seed.
func (r *Rand) Seed(seed uint64) {
	r.state = seed
}

// Uint64 returns the next value in the stream.
//
// splitmix64: multiply-xorshift-multiply-xorshift over a Weyl sequence.
// Reference: Steele, Lea, Flood — "Fast Splittable Pseudorandom Number
// Generators" (OOPSLA 2014).
func (r *Rand) Uint64() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Float64 returns a uniform value in [0, 1) with 53 bits of precision.
func (r *Rand) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Float64In returns a uniform value in the closed range [lo, hi].
func (r *Rand) Float64In(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntIn returns an integer in the closed range [lo, hi].
// The underlying draw is rounded rather than truncated.
func (r *Rand) IntIn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(math.Round(r.Float64()*float64(hi-lo)))
}

// Bool returns true with probability 0.5.
func (r *Rand) Bool() bool {
	return r.Uint64()&1 == 1
}

// Pick returns a uniformly chosen element of seq.
// The caller must guarantee seq is non-empty; picking from an empty
// sequence panics.
func Pick[T any](r *Rand, seq []T) T {
	return seq[r.IntIn(0, len(seq)-1)]
}
