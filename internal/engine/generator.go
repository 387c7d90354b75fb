// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/mvail/scrollforge/internal/rng"
)

// Batch composition. Generated in this order from a single PRNG stream so
// that regeneration from the same seed is bit-for-bit reproducible.
const (
	batchCommons  = 6
	batchRares    = 3
	batchSpecials = 1
)

// GeneratorConfig contains the tunable ranges of the content generator.
type GeneratorConfig struct {
	// SaturationLo and SaturationHi bound the batch saturation center.
	// Defaults: 0.50, 0.90.
	SaturationLo float64 `json:"saturation_lo"`
	SaturationHi float64 `json:"saturation_hi"`

	// BrightnessLo and BrightnessHi bound the batch brightness center.
	// Defaults: 0.55, 0.95.
	BrightnessLo float64 `json:"brightness_lo"`
	BrightnessHi float64 `json:"brightness_hi"`

	// SpreadLo and SpreadHi bound the batch hue spread, as a fraction of
	// the full hue circle. Defaults: 0.05, 0.12.
	SpreadLo float64 `json:"spread_lo"`
	SpreadHi float64 `json:"spread_hi"`

	// SaturationJitter and BrightnessJitter bound the per-item deviation
	// from the batch centers. Defaults: 0.12, 0.10.
	SaturationJitter float64 `json:"saturation_jitter"`
	BrightnessJitter float64 `json:"brightness_jitter"`

	// PatternFamilies is the enabled set for Special items. Must be
	// non-empty. Order matters for reproducibility.
	PatternFamilies []PatternFamily `json:"pattern_families"`
}

// DefaultGeneratorConfig returns the reference generator ranges.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SaturationLo:     0.50,
		SaturationHi:     0.90,
		BrightnessLo:     0.55,
		BrightnessHi:     0.95,
		SpreadLo:         0.05,
		SpreadHi:         0.12,
		SaturationJitter: 0.12,
		BrightnessJitter: 0.10,
		PatternFamilies: []PatternFamily{
			PatternStriped,
			PatternDotted,
			PatternIconographic,
			PatternGlyphTiled,
		},
	}
}

// Generator deterministically produces thematically coherent content
// batches from 64-bit seeds. Same seed, same batch, on every platform: the
// generator draws only from its own PRNG stream and uses no wall clock or
// map iteration in the derivation.
type Generator struct {
	cfg GeneratorConfig
}

// NewGenerator returns a generator with the given ranges.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{cfg: cfg}
}

// batchMood holds the four anchor values shared by every item of a batch.
type batchMood struct {
	hue        float64
	saturation float64
	brightness float64
	spread     float64
}

// GenerateBatch derives a full batch from the seed. The triggering item
// and timestamp are metadata only; they do not influence the derivation.
func (g *Generator) GenerateBatch(seed uint64, triggerItemID string, now time.Time) GeneratedBatch {
	return GeneratedBatch{
		Seed:          seed,
		TriggerItemID: triggerItemID,
		CreatedAt:     now,
		Items:         g.DeriveItems(seed),
	}
}

// DeriveItems reconstructs the item list for a seed. This is the pure
// derivation half of a persisted BatchRecord.
func (g *Generator) DeriveItems(seed uint64) []Item {
	r := rng.New(seed)

	mood := batchMood{
		hue:        r.Float64In(0, 1),
		saturation: r.Float64In(g.cfg.SaturationLo, g.cfg.SaturationHi),
		brightness: r.Float64In(g.cfg.BrightnessLo, g.cfg.BrightnessHi),
		spread:     r.Float64In(g.cfg.SpreadLo, g.cfg.SpreadHi),
	}

	items := make([]Item, 0, batchCommons+batchRares+batchSpecials)
	idx := 0
	for i := 0; i < batchCommons; i++ {
		items = append(items, g.deriveItem(r, seed, idx, TierCommon, mood))
		idx++
	}
	for i := 0; i < batchRares; i++ {
		items = append(items, g.deriveItem(r, seed, idx, TierRare, mood))
		idx++
	}
	for i := 0; i < batchSpecials; i++ {
		items = append(items, g.deriveItem(r, seed, idx, TierSpecial, mood))
		idx++
	}
	return items
}

// deriveItem draws one item from the shared stream. The draw order within
// an item is fixed: color, then adjective, then noun, then (Special only)
// pattern family and palette.
func (g *Generator) deriveItem(r *rng.Rand, seed uint64, idx int, tier Tier, mood batchMood) Item {
	color := g.deriveColor(r, mood)

	adj := rng.Pick(r, nameAdjectives[:])
	noun := rng.Pick(r, nameNouns[:])

	style := Style{Color: color}
	if tier == TierSpecial {
		style.Pattern = rng.Pick(r, g.cfg.PatternFamilies)
		style.Palette = []Color{
			g.deriveColor(r, mood),
			g.deriveColor(r, mood),
			g.deriveColor(r, mood),
		}
	}

	return Item{
		ID:        fmt.Sprintf("gen-%016x-%02d", seed, idx),
		Name:      adj + " " + noun,
		Tier:      tier,
		Style:     style,
		Generated: true,
	}
}

// deriveColor combines the batch anchors with per-item jitter. Hue wraps
// modulo the full circle; saturation and brightness clamp to [0, 1].
func (g *Generator) deriveColor(r *rng.Rand, mood batchMood) Color {
	hue := math.Mod(mood.hue+r.Float64In(-mood.spread, mood.spread), 1.0)
	if hue < 0 {
		hue += 1.0
	}
	return Color{
		Hue:        hue,
		Saturation: clamp01(mood.saturation + r.Float64In(-g.cfg.SaturationJitter, g.cfg.SaturationJitter)),
		Brightness: clamp01(mood.brightness + r.Float64In(-g.cfg.BrightnessJitter, g.cfg.BrightnessJitter)),
	}
}
