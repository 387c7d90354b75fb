// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"math"

	"github.com/mvail/scrollforge/internal/rng"
)

// RarityConfig contains the tunable constants of the rarity distribution.
// The piecewise shape (mono floor, common ramp, lockout band, gated rare and
// special ramps) is fixed; only the constants move.
type RarityConfig struct {
	// MonoThreshold is the unique-seen count below which the feed is all
	// placeholders. Default: 10.
	MonoThreshold int `json:"mono_threshold"`

	// RampEnd is the unique-seen count where the common ramp finishes.
	// Default: 40.
	RampEnd int `json:"ramp_end"`

	// CommonFloor and CommonCeiling bound the common weight across the
	// ramp. Defaults: 0.40, 0.85.
	CommonFloor   float64 `json:"common_floor"`
	CommonCeiling float64 `json:"common_ceiling"`

	// RareGateBuffer is the number of views that must elapse after the
	// full common catalog is unlocked before rare weight appears.
	// Default: 15.
	RareGateBuffer int `json:"rare_gate_buffer"`

	// RareFloor and RareCeiling bound the rare ramp once the gate opens;
	// RareRampSpan is its length in views. Defaults: 0.05, 0.25, 30.
	RareFloor    float64 `json:"rare_floor"`
	RareCeiling  float64 `json:"rare_ceiling"`
	RareRampSpan int     `json:"rare_ramp_span"`

	// SpecialCeiling and SpecialRampSpan shape the special ramp after the
	// full rare catalog is unlocked. Defaults: 0.10, 40.
	SpecialCeiling  float64 `json:"special_ceiling"`
	SpecialRampSpan int     `json:"special_ramp_span"`

	// GeneratedSpecialFloor is the constant weight granted to generated
	// Special items before the special gate opens, so generated content
	// is not starved. Default: 0.05.
	GeneratedSpecialFloor float64 `json:"generated_special_floor"`

	// NoveltyBase, NoveltyDecay and NoveltyFloor control the chance that
	// in-tier selection prefers a not-yet-unlocked identity: the chance
	// starts at NoveltyBase and decays by NoveltyDecay per unique item
	// seen, never below NoveltyFloor. Defaults: 0.85, 0.006, 0.25.
	NoveltyBase  float64 `json:"novelty_base"`
	NoveltyDecay float64 `json:"novelty_decay"`
	NoveltyFloor float64 `json:"novelty_floor"`

	// BoostWindowViews is how long, in views, a freshly generated item
	// keeps selection priority among its tier's locked candidates.
	// Default: 100.
	BoostWindowViews int `json:"boost_window_views"`

	// Seed initializes the sampler's private roll stream. If zero, a
	// fixed default is used.
	Seed uint64 `json:"seed"`
}

// DefaultRarityConfig returns the reference constants.
func DefaultRarityConfig() RarityConfig {
	return RarityConfig{
		MonoThreshold:         10,
		RampEnd:               40,
		CommonFloor:           0.40,
		CommonCeiling:         0.85,
		RareGateBuffer:        15,
		RareFloor:             0.05,
		RareCeiling:           0.25,
		RareRampSpan:          30,
		SpecialCeiling:        0.10,
		SpecialRampSpan:       40,
		GeneratedSpecialFloor: 0.05,
		NoveltyBase:           0.85,
		NoveltyDecay:          0.006,
		NoveltyFloor:          0.25,
		BoostWindowViews:      100,
		Seed:                  42,
	}
}

// Sampler maps unlock progress to a probability distribution over content
// tiers and picks concrete items within the rolled tier. It is owned by a
// single session and is not safe for concurrent use.
type Sampler struct {
	cfg     RarityConfig
	catalog *Catalog
	unlocks *UnlockSet
	rand    *rng.Rand

	// views is the session's total view count, advanced via NoteView.
	views int

	// Completion points are recorded once and never reset, so tiers never
	// re-lock when generated items widen the catalog after the gate
	// opened. -1 means not yet complete.
	commonsCompleteViews int
	raresCompleteViews   int

	// suppressNovelty forces the next materialized pick of a tier to
	// prefer an already-unlocked identity, so two first sightings never
	// land back to back.
	suppressNovelty map[Tier]bool

	// boostUntil maps a generated item to the view count at which its
	// selection priority expires.
	boostUntil map[string]int
}

// NewSampler returns a sampler over the given catalog and unlock set.
func NewSampler(cfg RarityConfig, catalog *Catalog, unlocks *UnlockSet) *Sampler {
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	return &Sampler{
		cfg:                  cfg,
		catalog:              catalog,
		unlocks:              unlocks,
		rand:                 rng.New(seed),
		commonsCompleteViews: -1,
		raresCompleteViews:   -1,
		suppressNovelty:      make(map[Tier]bool),
		boostUntil:           make(map[string]int),
	}
}

// NoteView advances the sampler's view counter and records tier completion
// points. Call once per visibility event, after unlock bookkeeping.
func (s *Sampler) NoteView(totalViews int) {
	s.views = totalViews
	if s.commonsCompleteViews < 0 && s.unlocks.ContainsAll(s.catalog.IDsOf(TierCommon)) {
		s.commonsCompleteViews = totalViews
	}
	if s.raresCompleteViews < 0 && s.unlocks.ContainsAll(s.catalog.IDsOf(TierRare)) {
		s.raresCompleteViews = totalViews
	}
}

// NoteFirstSighting marks that a new identity of the tier was just revealed.
// The next materialized pick of that tier resamples from unlocked items.
func (s *Sampler) NoteFirstSighting(tier Tier) {
	s.suppressNovelty[tier] = true
}

// RegisterBoost opens the boost window for a generated batch's items.
func (s *Sampler) RegisterBoost(items []Item) {
	for _, it := range items {
		if it.Generated {
			s.boostUntil[it.ID] = s.views + s.cfg.BoostWindowViews
		}
	}
}

// Distribution maps unique items seen to the four tier weights. The weights
// are non-negative and sum to exactly 1: rare and special are computed from
// their gates, and common or mono absorbs the remainder.
func (s *Sampler) Distribution(uniqueSeen int) Weights {
	if uniqueSeen < s.cfg.MonoThreshold {
		return Weights{Mono: 1}
	}

	wRare := s.rareWeight()
	wSpecial := s.specialWeight()

	if uniqueSeen < s.cfg.RampEnd {
		// Common ramp. The rare gate can already be open here when the
		// common catalog is smaller than the ramp span, so cap the common
		// weight at the remainder left by the gated tiers.
		t := float64(uniqueSeen-s.cfg.MonoThreshold) / float64(s.cfg.RampEnd-s.cfg.MonoThreshold)
		wCommon := s.cfg.CommonFloor + t*(s.cfg.CommonCeiling-s.cfg.CommonFloor)
		wCommon = math.Min(wCommon, 1-wRare-wSpecial)
		return Weights{
			Mono:    1 - wCommon - wRare - wSpecial,
			Common:  wCommon,
			Rare:    wRare,
			Special: wSpecial,
		}
	}

	if s.commonsCompleteViews < 0 {
		// Lockout band: the ramp is over but the common catalog is not
		// fully unlocked. Force commons until every identity has been
		// seen at least once.
		return Weights{Common: 1}
	}

	return Weights{
		Common:  1 - wRare - wSpecial,
		Rare:    wRare,
		Special: wSpecial,
	}
}

// rareWeight returns the rare weight under the common-completion gate with
// its post-completion view buffer, ramping to a plateau.
func (s *Sampler) rareWeight() float64 {
	if s.commonsCompleteViews < 0 {
		return 0
	}
	opensAt := s.commonsCompleteViews + s.cfg.RareGateBuffer
	if s.views < opensAt {
		return 0
	}
	progress := math.Min(1, float64(s.views-opensAt)/float64(s.cfg.RareRampSpan))
	return s.cfg.RareFloor + progress*(s.cfg.RareCeiling-s.cfg.RareFloor)
}

// specialWeight returns the special weight under the rare-completion gate,
// with the generated-content floor applied before the gate opens.
func (s *Sampler) specialWeight() float64 {
	if s.raresCompleteViews < 0 {
		if s.catalog.HasGeneratedSpecials() {
			return s.cfg.GeneratedSpecialFloor
		}
		return 0
	}
	progress := math.Min(1, float64(s.views-s.raresCompleteViews)/float64(s.cfg.SpecialRampSpan))
	return progress * s.cfg.SpecialCeiling
}

// MaterializeSlot rolls a tier from the current distribution and fills a
// feed slot. Mono rolls produce a discovery placeholder with a random
// shade; item rolls select within the tier.
func (s *Sampler) MaterializeSlot(uniqueSeen int) FeedSlot {
	tier := s.rollTier(s.Distribution(uniqueSeen))
	if tier == TierMono {
		return FeedSlot{Shade: s.rand.Float64()}
	}

	item := s.pickItem(tier, uniqueSeen)
	if item.ID == PlaceholderItemID {
		return FeedSlot{Shade: s.rand.Float64()}
	}
	return FeedSlot{Item: &item}
}

// rollTier selects a tier by cumulative-sum comparison against a single
// uniform roll. The order mono, common, rare, special is significant for
// reproducibility; ties resolve into the half-open interval above them.
func (s *Sampler) rollTier(w Weights) Tier {
	roll := s.rand.Float64()
	c := w.Mono
	if roll < c {
		return TierMono
	}
	c += w.Common
	if roll < c {
		return TierCommon
	}
	c += w.Rare
	if roll < c {
		return TierRare
	}
	return TierSpecial
}

// pickItem selects a concrete identity within a tier. A decaying novelty
// chance prefers not-yet-unlocked identities to pace unlocks; otherwise the
// pick resamples from already-unlocked identities. An empty tier falls back
// to the placeholder.
func (s *Sampler) pickItem(tier Tier, uniqueSeen int) Item {
	items := s.catalog.ItemsOf(tier)
	if len(items) == 0 {
		return placeholderItem
	}

	var locked, unlocked []Item
	for _, it := range items {
		if s.unlocks.Has(it.ID) {
			unlocked = append(unlocked, it)
		} else {
			locked = append(locked, it)
		}
	}

	suppressed := s.suppressNovelty[tier]
	if suppressed {
		delete(s.suppressNovelty, tier)
	}

	novelty := math.Max(s.cfg.NoveltyFloor, s.cfg.NoveltyBase-s.cfg.NoveltyDecay*float64(uniqueSeen))
	if len(locked) > 0 && !suppressed && s.rand.Float64() < novelty {
		return rng.Pick(s.rand, s.boostedSubset(locked))
	}
	if len(unlocked) > 0 {
		return rng.Pick(s.rand, unlocked)
	}
	// Nothing unlocked yet in this tier; a locked pick is the only option.
	return rng.Pick(s.rand, locked)
}

// boostedSubset narrows locked candidates to those inside an open boost
// window, when any exist. Boosted generated items thereby take priority
// among same-tier candidates without altering the published distribution.
func (s *Sampler) boostedSubset(locked []Item) []Item {
	var boosted []Item
	for _, it := range locked {
		if until, ok := s.boostUntil[it.ID]; ok && s.views <= until {
			boosted = append(boosted, it)
		}
	}
	if len(boosted) > 0 {
		return boosted
	}
	return locked
}
