// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import "time"

// trackerWindowSize is the capacity of both trailing windows.
const trackerWindowSize = 10

// Tracker maintains short sliding windows over item-visibility timestamps
// to derive instantaneous scroll velocity and its trend. It is owned by a
// single session and is not safe for concurrent use.
type Tracker struct {
	timestamps []time.Time
	velocities []float64
	capacity   int
}

// NewTracker returns a tracker with the default window capacity.
func NewTracker() *Tracker {
	return &Tracker{
		timestamps: make([]time.Time, 0, trackerWindowSize),
		velocities: make([]float64, 0, trackerWindowSize),
		capacity:   trackerWindowSize,
	}
}

// Observe records one visibility event. The oldest sample is evicted when
// a window is full. The velocity computed after inserting the timestamp is
// appended to the velocity window.
func (t *Tracker) Observe(now time.Time) {
	if len(t.timestamps) >= t.capacity {
		t.timestamps = t.timestamps[1:]
	}
	t.timestamps = append(t.timestamps, now)

	v := t.Velocity()
	if len(t.velocities) >= t.capacity {
		t.velocities = t.velocities[1:]
	}
	t.velocities = append(t.velocities, v)
}

// Velocity returns items/sec across the timestamp window. With fewer than
// two samples, or a zero elapsed span, it defaults to 1.0 so downstream
// scoring never divides by zero.
func (t *Tracker) Velocity() float64 {
	if len(t.timestamps) < 2 {
		return 1.0
	}
	span := t.timestamps[len(t.timestamps)-1].Sub(t.timestamps[0]).Seconds()
	if span <= 0 {
		return 1.0
	}
	return float64(len(t.timestamps)) / span
}

// Trend returns the ordinary least-squares slope of velocity against sample
// index over the velocity window. It returns 0 with fewer than three samples
// or a degenerate fit. Negative values mean the user is slowing down.
func (t *Tracker) Trend() float64 {
	n := len(t.velocities)
	if n < 3 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range t.velocities {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// Samples returns the number of timestamps currently in the window.
func (t *Tracker) Samples() int {
	return len(t.timestamps)
}
