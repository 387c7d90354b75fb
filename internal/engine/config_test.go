// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown predictor", func(c *Config) { c.Predictor = "oracle" }},
		{"threshold above one", func(c *Config) { c.Scheduler.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Scheduler.Threshold = -0.1 }},
		{"full set below threshold", func(c *Config) { c.Scheduler.FullSetBound = 0.4 }},
		{"negative cooldown", func(c *Config) { c.Scheduler.CooldownViews = -1 }},
		{"zero scan ahead", func(c *Config) { c.Scheduler.ScanAhead = 0 }},
		{"negative mono threshold", func(c *Config) { c.Rarity.MonoThreshold = -1 }},
		{"ramp end at threshold", func(c *Config) { c.Rarity.RampEnd = c.Rarity.MonoThreshold }},
		{"inverted common bounds", func(c *Config) { c.Rarity.CommonFloor = 0.9 }},
		{"common ceiling above one", func(c *Config) { c.Rarity.CommonCeiling = 1.1 }},
		{"gated ceilings consume everything", func(c *Config) { c.Rarity.RareCeiling = 0.95 }},
		{"zero rare ramp span", func(c *Config) { c.Rarity.RareRampSpan = 0 }},
		{"zero special ramp span", func(c *Config) { c.Rarity.SpecialRampSpan = 0 }},
		{"novelty floor above base", func(c *Config) { c.Rarity.NoveltyFloor = 0.9 }},
		{"novelty base above one", func(c *Config) { c.Rarity.NoveltyBase = 1.2 }},
		{"no pattern families", func(c *Config) { c.Generator.PatternFamilies = nil }},
		{"zero spread", func(c *Config) { c.Generator.SpreadLo = 0 }},
		{"inverted spread bounds", func(c *Config) { c.Generator.SpreadHi = 0.01 }},
		{"zero lookahead", func(c *Config) { c.Lookahead = 0 }},
		{"zero active gap", func(c *Config) { c.ActiveGapSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Generator.PatternFamilies[0] = "mutated"
	clone.Scheduler.Threshold = 0.99

	if cfg.Generator.PatternFamilies[0] == "mutated" {
		t.Error("pattern families shared between clone and original")
	}
	if cfg.Scheduler.Threshold == 0.99 {
		t.Error("scalar fields shared between clone and original")
	}
}
