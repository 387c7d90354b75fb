// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"math"
	"testing"
	"time"
)

func TestVelocityDefaultsWithoutSamples(t *testing.T) {
	tr := NewTracker()
	if v := tr.Velocity(); v != 1.0 {
		t.Errorf("empty tracker velocity = %v, want 1.0", v)
	}

	tr.Observe(time.Unix(1000, 0))
	if v := tr.Velocity(); v != 1.0 {
		t.Errorf("single-sample velocity = %v, want 1.0", v)
	}
}

func TestVelocityZeroSpanDefaults(t *testing.T) {
	tr := NewTracker()
	now := time.Unix(1000, 0)
	tr.Observe(now)
	tr.Observe(now)
	if v := tr.Velocity(); v != 1.0 {
		t.Errorf("zero-span velocity = %v, want 1.0", v)
	}
}

func TestVelocitySteadyScroll(t *testing.T) {
	tr := NewTracker()
	start := time.Unix(1000, 0)
	// One item every 500ms: 10 samples across 4.5s.
	for i := 0; i < 10; i++ {
		tr.Observe(start.Add(time.Duration(i) * 500 * time.Millisecond))
	}

	want := 10.0 / 4.5
	if v := tr.Velocity(); math.Abs(v-want) > 1e-9 {
		t.Errorf("steady velocity = %v, want %v", v, want)
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	tr := NewTracker()
	start := time.Unix(1000, 0)
	for i := 0; i < 25; i++ {
		tr.Observe(start.Add(time.Duration(i) * time.Second))
	}
	if n := tr.Samples(); n != trackerWindowSize {
		t.Errorf("window holds %d samples, want %d", n, trackerWindowSize)
	}
}

func TestTrendRequiresThreeSamples(t *testing.T) {
	tr := NewTracker()
	tr.Observe(time.Unix(1000, 0))
	tr.Observe(time.Unix(1001, 0))
	if tr.Trend() != 0 {
		t.Errorf("trend with 2 samples = %v, want 0", tr.Trend())
	}
}

func TestTrendNegativeWhenSlowing(t *testing.T) {
	tr := NewTracker()
	now := time.Unix(1000, 0)
	// Stretching intervals: the user is decelerating. Enough samples to
	// push window warm-up artifacts out of both windows.
	gap := 200 * time.Millisecond
	for i := 0; i < 25; i++ {
		tr.Observe(now)
		now = now.Add(gap)
		gap = gap * 12 / 10
	}

	if trend := tr.Trend(); trend >= 0 {
		t.Errorf("decelerating trend = %v, want negative", trend)
	}
}

func TestTrendPositiveWhenAccelerating(t *testing.T) {
	tr := NewTracker()
	now := time.Unix(1000, 0)
	gap := 2 * time.Second
	for i := 0; i < 25; i++ {
		tr.Observe(now)
		now = now.Add(gap)
		gap = gap * 85 / 100
	}

	if trend := tr.Trend(); trend <= 0 {
		t.Errorf("accelerating trend = %v, want positive", trend)
	}
}

func TestTrendDegenerateConstantVelocity(t *testing.T) {
	tr := NewTracker()
	start := time.Unix(1000, 0)
	for i := 0; i < 10; i++ {
		tr.Observe(start.Add(time.Duration(i) * time.Second))
	}

	// Constant cadence: slope should be near zero once the window warms up.
	if trend := tr.Trend(); math.Abs(trend) > 0.5 {
		t.Errorf("constant-cadence trend = %v, want near 0", trend)
	}
}
