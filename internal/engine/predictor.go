// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import "math"

// Predictor scores the probability that the user is about to disengage.
//
// Implementations must be pure and total: never fail, no side effects, and
// always return a value in [0, 1]. The heuristic below is the reference
// implementation; a learned model can be swapped in at construction time
// under the same contract without touching any caller.
type Predictor interface {
	// ChurnProbability maps a scroll snapshot to a disengagement
	// probability in [0, 1].
	ChurnProbability(snap ScrollSnapshot) float64
}

// HeuristicConfig contains the tunable constants of the reference
// heuristic. Each term of the additive risk budget is independently capped.
type HeuristicConfig struct {
	// DroughtSpan is the view count at which the reward drought term
	// saturates. Default: 15.
	DroughtSpan float64 `json:"drought_span"`

	// DroughtWeight is the maximum contribution of the drought term.
	// Default: 0.40.
	DroughtWeight float64 `json:"drought_weight"`

	// TrendScale multiplies a negative velocity trend. Default: 0.5.
	TrendScale float64 `json:"trend_scale"`

	// TrendCap is the maximum contribution of the trend term.
	// Default: 0.25.
	TrendCap float64 `json:"trend_cap"`

	// FatigueGraceMinutes is the session length before fatigue accrues.
	// Default: 3.
	FatigueGraceMinutes float64 `json:"fatigue_grace_minutes"`

	// FatiguePerMinute is the risk added per minute past the grace
	// period. Default: 0.04.
	FatiguePerMinute float64 `json:"fatigue_per_minute"`

	// FatigueCap is the maximum contribution of the fatigue term.
	// Default: 0.20.
	FatigueCap float64 `json:"fatigue_cap"`

	// LowDepthUnlocks and LowDepthViews bound the low engagement-depth
	// penalty: it applies when unlocks are below the former while views
	// already exceed the latter. Defaults: 3 and 20.
	LowDepthUnlocks int `json:"low_depth_unlocks"`
	LowDepthViews   int `json:"low_depth_views"`

	// LowDepthPenalty is the flat penalty for shallow engagement.
	// Default: 0.10.
	LowDepthPenalty float64 `json:"low_depth_penalty"`

	// StallVelocity and StallViews bound the near-stalled penalty: it
	// applies below the former once views exceed the latter.
	// Defaults: 0.3 and 10.
	StallVelocity float64 `json:"stall_velocity"`
	StallViews    int     `json:"stall_views"`

	// StallPenalty is the flat penalty for near-stalled scrolling.
	// Default: 0.10.
	StallPenalty float64 `json:"stall_penalty"`
}

// DefaultHeuristicConfig returns the reference constants.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		DroughtSpan:         15,
		DroughtWeight:       0.40,
		TrendScale:          0.5,
		TrendCap:            0.25,
		FatigueGraceMinutes: 3,
		FatiguePerMinute:    0.04,
		FatigueCap:          0.20,
		LowDepthUnlocks:     3,
		LowDepthViews:       20,
		LowDepthPenalty:     0.10,
		StallVelocity:       0.3,
		StallViews:          10,
		StallPenalty:        0.10,
	}
}

// HeuristicPredictor is the frozen reference churn heuristic: an additive
// risk budget with per-term caps and a final clamp to [0, 1].
type HeuristicPredictor struct {
	cfg HeuristicConfig
}

// NewHeuristicPredictor returns a predictor with the given constants.
func NewHeuristicPredictor(cfg HeuristicConfig) *HeuristicPredictor {
	return &HeuristicPredictor{cfg: cfg}
}

// ChurnProbability implements Predictor.
func (p *HeuristicPredictor) ChurnProbability(snap ScrollSnapshot) float64 {
	risk := p.droughtTerm(snap)
	risk += p.trendTerm(snap)
	risk += p.fatigueTerm(snap)
	risk += p.lowDepthTerm(snap)
	risk += p.stallTerm(snap)
	return clamp01(risk)
}

// droughtTerm rises linearly with views since the last unlock, saturating
// at DroughtSpan.
func (p *HeuristicPredictor) droughtTerm(snap ScrollSnapshot) float64 {
	drought := math.Min(1, float64(snap.ViewsSinceUnlock)/p.cfg.DroughtSpan)
	return drought * p.cfg.DroughtWeight
}

// trendTerm penalizes a decelerating scroll. A positive trend contributes
// nothing.
func (p *HeuristicPredictor) trendTerm(snap ScrollSnapshot) float64 {
	if snap.Trend >= 0 {
		return 0
	}
	return math.Min(p.cfg.TrendCap, math.Abs(snap.Trend)*p.cfg.TrendScale)
}

// fatigueTerm accrues per minute of session time past the grace period.
func (p *HeuristicPredictor) fatigueTerm(snap ScrollSnapshot) float64 {
	minutes := snap.SessionSeconds / 60
	over := minutes - p.cfg.FatigueGraceMinutes
	if over <= 0 {
		return 0
	}
	return math.Min(p.cfg.FatigueCap, over*p.cfg.FatiguePerMinute)
}

// lowDepthTerm applies when the user has seen many items but unlocked
// almost nothing.
func (p *HeuristicPredictor) lowDepthTerm(snap ScrollSnapshot) float64 {
	if snap.UnlockedCount < p.cfg.LowDepthUnlocks && snap.TotalViews > p.cfg.LowDepthViews {
		return p.cfg.LowDepthPenalty
	}
	return 0
}

// stallTerm applies when absolute velocity is near zero on an established
// session.
func (p *HeuristicPredictor) stallTerm(snap ScrollSnapshot) float64 {
	if snap.Velocity < p.cfg.StallVelocity && snap.TotalViews > p.cfg.StallViews {
		return p.cfg.StallPenalty
	}
	return 0
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
