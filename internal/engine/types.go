// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"time"
)

// Tier is the ordered content rarity class. Higher tiers are scarcer and
// gate on complete exposure to the tier below.
type Tier int

// Tier values, in unlock order. TierMono is the discovery placeholder
// pseudo-tier; it never appears in the unlock catalog.
const (
	TierMono Tier = iota
	TierCommon
	TierRare
	TierSpecial
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case TierMono:
		return "mono"
	case TierCommon:
		return "common"
	case TierRare:
		return "rare"
	case TierSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// PatternFamily identifies the visual pattern assigned to generated
// Special-tier items.
type PatternFamily string

// Pattern families available to the content generator.
const (
	PatternStriped      PatternFamily = "striped"
	PatternDotted       PatternFamily = "dotted"
	PatternIconographic PatternFamily = "iconographic"
	PatternGlyphTiled   PatternFamily = "glyph-tiled"
)

// Color is an HSB triple with all components in [0, 1].
// The engine treats colors as opaque payload; only the generator writes them.
type Color struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
}

// Style is the visual descriptor attached to an item. Opaque to the engine;
// consumed by the presentation layer.
type Style struct {
	Color   Color         `json:"color"`
	Pattern PatternFamily `json:"pattern,omitempty"`
	Palette []Color       `json:"palette,omitempty"`
}

// Item is an immutable content item. Created once, either statically
// cataloged or procedurally generated, and never mutated. The ID is stable
// and usable as a map key.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Tier      Tier   `json:"tier"`
	Style     Style  `json:"style"`
	Generated bool   `json:"generated,omitempty"`
}

// FeedSlot is one position in the infinite feed. It holds either an item
// reference or a discovery placeholder with a scalar shade. A slot may be
// overwritten at most once, by the intervention scheduler, and only while it
// still holds a placeholder or an unseen Common item.
type FeedSlot struct {
	Item     *Item   `json:"item,omitempty"`
	Shade    float64 `json:"shade,omitempty"`
	Seen     bool    `json:"seen"`
	Injected bool    `json:"injected,omitempty"`
}

// IsPlaceholder reports whether the slot holds a discovery placeholder.
func (s *FeedSlot) IsPlaceholder() bool {
	return s.Item == nil
}

// Weights is the rarity distribution over content tiers. The four weights
// always sum to 1.0 within floating-point tolerance.
type Weights struct {
	Mono    float64 `json:"mono"`
	Common  float64 `json:"common"`
	Rare    float64 `json:"rare"`
	Special float64 `json:"special"`
}

// Sum returns the total of the four weights.
func (w Weights) Sum() float64 {
	return w.Mono + w.Common + w.Rare + w.Special
}

// BehaviorSnapshot is a point-in-time record of engagement state. It is
// constructed fresh on each triggering event and hashed into the content
// generator seed; it is never persisted.
type BehaviorSnapshot struct {
	TotalViews     int
	UniqueViews    int
	ActiveSeconds  float64
	SessionSeconds float64
	ScrollPosition int
	TimeBucket     int // 0..3, six-hour buckets of the local day
	Weights        Weights
	TriggerItemID  string
}

// ScrollSnapshot is the derived feature vector scored by the churn
// predictor. Recomputed on every visibility event and immediately
// superseded; nothing beyond the trailing windows is retained.
type ScrollSnapshot struct {
	ViewsSinceUnlock int
	Velocity         float64 // items/sec over the trailing window
	Trend            float64 // least-squares slope of the velocity window
	UnlockDensity    float64 // unlocked / total views
	RewardDrought    float64 // normalized drought in [0, 1]
	SessionSeconds   float64
	ActiveSeconds    float64
	TotalViews       int
	UnlockedCount    int
}

// GeneratedBatch is the output of one content generator invocation. The
// item list is fully derivable from the seed; only the BatchRecord part is
// durable.
type GeneratedBatch struct {
	Seed          uint64    `json:"seed"`
	TriggerItemID string    `json:"trigger_item_id"`
	CreatedAt     time.Time `json:"created_at"`
	Items         []Item    `json:"items"`
}

// Record returns the durable metadata for this batch. Items are dropped;
// they are recomputed from the seed on demand.
func (b *GeneratedBatch) Record() BatchRecord {
	return BatchRecord{
		Seed:          b.Seed,
		TriggerItemID: b.TriggerItemID,
		CreatedAt:     b.CreatedAt,
	}
}

// BatchRecord is the persisted form of a generated batch: seed and metadata
// only. DeriveItems reconstructs the full batch.
type BatchRecord struct {
	Seed          uint64    `json:"seed"`
	TriggerItemID string    `json:"trigger_item_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// InterventionKind is one reaction the scheduler can select.
type InterventionKind string

// Intervention kinds. KindInjectReward mutates the upcoming feed; the rest
// are rendered by presentation collaborators subscribed to the event bus.
const (
	KindInjectReward InterventionKind = "inject_reward"
	KindHaptic       InterventionKind = "haptic"
	KindSound        InterventionKind = "sound"
	KindSocialProof  InterventionKind = "social_proof"
)

// InterventionDecision is the transient result of one scheduler evaluation.
type InterventionDecision struct {
	Probability    float64            `json:"probability"`
	CooldownPassed bool               `json:"cooldown_passed"`
	Triggered      bool               `json:"triggered"`
	Kinds          []InterventionKind `json:"kinds,omitempty"`
}

// HasKind reports whether the decision selected the given kind.
func (d *InterventionDecision) HasKind(k InterventionKind) bool {
	for _, kind := range d.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// UnlockSet is the cumulative set of item identities the user has ever
// encountered. It grows monotonically and never shrinks.
type UnlockSet struct {
	ids map[string]struct{}
}

// NewUnlockSet returns an empty unlock set.
func NewUnlockSet() *UnlockSet {
	return &UnlockSet{ids: make(map[string]struct{})}
}

// Add records an identity as unlocked. It returns true if the identity was
// not previously present.
func (u *UnlockSet) Add(id string) bool {
	if _, ok := u.ids[id]; ok {
		return false
	}
	u.ids[id] = struct{}{}
	return true
}

// Has reports whether the identity is unlocked.
func (u *UnlockSet) Has(id string) bool {
	_, ok := u.ids[id]
	return ok
}

// Len returns the number of unlocked identities.
func (u *UnlockSet) Len() int {
	return len(u.ids)
}

// ContainsAll reports whether every given identity is unlocked.
func (u *UnlockSet) ContainsAll(ids []string) bool {
	for _, id := range ids {
		if !u.Has(id) {
			return false
		}
	}
	return true
}
