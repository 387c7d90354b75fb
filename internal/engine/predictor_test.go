// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"math"
	"testing"
)

func newHeuristic() *HeuristicPredictor {
	return NewHeuristicPredictor(DefaultHeuristicConfig())
}

func TestChurnProbabilityBounds(t *testing.T) {
	p := newHeuristic()

	snaps := []ScrollSnapshot{
		{},
		{ViewsSinceUnlock: 10000, Velocity: 0, Trend: -100, SessionSeconds: 1e6, TotalViews: 1e6},
		{ViewsSinceUnlock: -5, Velocity: 50, Trend: 100, SessionSeconds: 0},
		{Velocity: math.Inf(1), Trend: math.Inf(-1), SessionSeconds: 1e9, TotalViews: 30},
	}

	for i, snap := range snaps {
		got := p.ChurnProbability(snap)
		if got < 0 || got > 1 {
			t.Errorf("snapshot %d: churn probability %v outside [0, 1]", i, got)
		}
	}
}

func TestChurnHighRiskScenario(t *testing.T) {
	// Deep drought, long session, shallow engagement, near-stalled and
	// decelerating: every term contributes at its cap.
	p := newHeuristic()
	snap := ScrollSnapshot{
		ViewsSinceUnlock: 120,
		Velocity:         0.2,
		Trend:            -0.1,
		SessionSeconds:   480,
		TotalViews:       120,
		UnlockedCount:    2,
	}

	// drought 0.40 + trend 0.05 + fatigue 0.20 + depth 0.10 + stall 0.10
	want := 0.85
	got := p.ChurnProbability(snap)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("high-risk churn = %v, want %v", got, want)
	}
}

func TestChurnTermContributions(t *testing.T) {
	p := newHeuristic()

	tests := []struct {
		name string
		snap ScrollSnapshot
		want float64
	}{
		{
			name: "no risk",
			snap: ScrollSnapshot{Velocity: 2.0, Trend: 0.1, SessionSeconds: 60, UnlockedCount: 5, TotalViews: 10},
			want: 0,
		},
		{
			name: "drought saturates at span",
			snap: ScrollSnapshot{ViewsSinceUnlock: 15, Velocity: 2.0, UnlockedCount: 5},
			want: 0.40,
		},
		{
			name: "drought partial",
			snap: ScrollSnapshot{ViewsSinceUnlock: 6, Velocity: 2.0, UnlockedCount: 5},
			want: 0.16, // 6/15 * 0.40
		},
		{
			name: "negative trend capped",
			snap: ScrollSnapshot{Trend: -2.0, Velocity: 2.0, UnlockedCount: 5},
			want: 0.25,
		},
		{
			name: "positive trend free",
			snap: ScrollSnapshot{Trend: 2.0, Velocity: 2.0, UnlockedCount: 5},
			want: 0,
		},
		{
			name: "fatigue accrues past grace",
			snap: ScrollSnapshot{SessionSeconds: 300, Velocity: 2.0, UnlockedCount: 5},
			want: 0.08, // 2 minutes over * 0.04
		},
		{
			name: "fatigue capped",
			snap: ScrollSnapshot{SessionSeconds: 3600, Velocity: 2.0, UnlockedCount: 5},
			want: 0.20,
		},
		{
			name: "low depth penalty",
			snap: ScrollSnapshot{UnlockedCount: 2, TotalViews: 21, Velocity: 2.0},
			want: 0.10,
		},
		{
			name: "low depth needs substantial views",
			snap: ScrollSnapshot{UnlockedCount: 2, TotalViews: 20, Velocity: 2.0},
			want: 0,
		},
		{
			name: "stall penalty",
			snap: ScrollSnapshot{Velocity: 0.2, TotalViews: 11, UnlockedCount: 5},
			want: 0.10,
		},
		{
			name: "stall needs established session",
			snap: ScrollSnapshot{Velocity: 0.2, TotalViews: 10, UnlockedCount: 5},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ChurnProbability(tt.snap)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("churn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPredictorIsPure(t *testing.T) {
	p := newHeuristic()
	snap := ScrollSnapshot{ViewsSinceUnlock: 7, Velocity: 0.5, Trend: -0.02, SessionSeconds: 200, TotalViews: 40, UnlockedCount: 4}

	first := p.ChurnProbability(snap)
	for i := 0; i < 100; i++ {
		if got := p.ChurnProbability(snap); got != first {
			t.Fatalf("call %d returned %v, first call returned %v", i, got, first)
		}
	}
}

// TestPredictorSwappable pins the construction-time polymorphism contract:
// any implementation satisfying Predictor drops in without touching the
// scheduler.
func TestPredictorSwappable(t *testing.T) {
	fixed := fixedPredictor{p: 0.9}
	sched := NewScheduler(DefaultSchedulerConfig(), fixed)

	d := sched.Evaluate(ScrollSnapshot{TotalViews: 100})
	if !d.Triggered {
		t.Error("scheduler ignored swapped-in predictor")
	}
	if d.Probability != 0.9 {
		t.Errorf("probability = %v, want 0.9", d.Probability)
	}
}

// fixedPredictor returns a constant score.
type fixedPredictor struct{ p float64 }

func (f fixedPredictor) ChurnProbability(ScrollSnapshot) float64 { return f.p }
