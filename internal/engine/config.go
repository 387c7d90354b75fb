// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import "fmt"

// PredictorHeuristic names the frozen reference predictor implementation.
// Variants are tagged implementations selected at construction time.
const PredictorHeuristic = "heuristic"

// Config contains all configuration for one engagement session.
type Config struct {
	// Predictor selects the churn predictor implementation.
	// Default: "heuristic".
	Predictor string `json:"predictor"`

	// Heuristic contains the reference predictor constants.
	Heuristic HeuristicConfig `json:"heuristic"`

	// Rarity contains the distribution sampler constants.
	Rarity RarityConfig `json:"rarity"`

	// Generator contains the content generator ranges.
	Generator GeneratorConfig `json:"generator"`

	// Scheduler contains the intervention thresholds.
	Scheduler SchedulerConfig `json:"scheduler"`

	// Lookahead is how many slots are materialized ahead of the scroll
	// position. Default: 20.
	Lookahead int `json:"lookahead"`

	// ActiveGapSeconds caps the per-event contribution to active-scroll
	// time; gaps longer than this count as idle. Default: 2.
	ActiveGapSeconds float64 `json:"active_gap_seconds"`
}

// DefaultConfig returns a Config with the reference constants.
func DefaultConfig() *Config {
	return &Config{
		Predictor:        PredictorHeuristic,
		Heuristic:        DefaultHeuristicConfig(),
		Rarity:           DefaultRarityConfig(),
		Generator:        DefaultGeneratorConfig(),
		Scheduler:        DefaultSchedulerConfig(),
		Lookahead:        20,
		ActiveGapSeconds: 2,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Predictor != PredictorHeuristic {
		return fmt.Errorf("unknown predictor %q", c.Predictor)
	}

	if c.Scheduler.Threshold < 0 || c.Scheduler.Threshold > 1 {
		return fmt.Errorf("scheduler.threshold must be in [0, 1], got %f", c.Scheduler.Threshold)
	}
	if c.Scheduler.FullSetBound < c.Scheduler.Threshold {
		return fmt.Errorf("scheduler.full_set_bound must be >= scheduler.threshold, got %f < %f",
			c.Scheduler.FullSetBound, c.Scheduler.Threshold)
	}
	if c.Scheduler.CooldownViews < 0 {
		return fmt.Errorf("scheduler.cooldown_views must be non-negative, got %d", c.Scheduler.CooldownViews)
	}
	if c.Scheduler.ScanAhead < 1 {
		return fmt.Errorf("scheduler.scan_ahead must be positive, got %d", c.Scheduler.ScanAhead)
	}

	if c.Rarity.MonoThreshold < 0 {
		return fmt.Errorf("rarity.mono_threshold must be non-negative, got %d", c.Rarity.MonoThreshold)
	}
	if c.Rarity.RampEnd <= c.Rarity.MonoThreshold {
		return fmt.Errorf("rarity.ramp_end must be > rarity.mono_threshold, got %d <= %d",
			c.Rarity.RampEnd, c.Rarity.MonoThreshold)
	}
	if c.Rarity.CommonFloor < 0 || c.Rarity.CommonCeiling > 1 || c.Rarity.CommonFloor > c.Rarity.CommonCeiling {
		return fmt.Errorf("rarity common ramp bounds invalid: floor %f, ceiling %f",
			c.Rarity.CommonFloor, c.Rarity.CommonCeiling)
	}
	if c.Rarity.RareCeiling+c.Rarity.SpecialCeiling >= 1 {
		return fmt.Errorf("rarity rare+special ceilings must leave common weight, got %f",
			c.Rarity.RareCeiling+c.Rarity.SpecialCeiling)
	}
	if c.Rarity.RareRampSpan < 1 || c.Rarity.SpecialRampSpan < 1 {
		return fmt.Errorf("rarity ramp spans must be positive")
	}
	if c.Rarity.NoveltyFloor < 0 || c.Rarity.NoveltyBase > 1 || c.Rarity.NoveltyFloor > c.Rarity.NoveltyBase {
		return fmt.Errorf("rarity novelty bounds invalid: base %f, floor %f",
			c.Rarity.NoveltyBase, c.Rarity.NoveltyFloor)
	}

	if len(c.Generator.PatternFamilies) == 0 {
		return fmt.Errorf("generator.pattern_families must be non-empty")
	}
	if c.Generator.SpreadLo <= 0 || c.Generator.SpreadHi < c.Generator.SpreadLo {
		return fmt.Errorf("generator spread bounds invalid: lo %f, hi %f",
			c.Generator.SpreadLo, c.Generator.SpreadHi)
	}

	if c.Lookahead < 1 {
		return fmt.Errorf("lookahead must be positive, got %d", c.Lookahead)
	}
	if c.ActiveGapSeconds <= 0 {
		return fmt.Errorf("active_gap_seconds must be positive, got %f", c.ActiveGapSeconds)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Generator.PatternFamilies = append([]PatternFamily(nil), c.Generator.PatternFamilies...)
	return &clone
}
