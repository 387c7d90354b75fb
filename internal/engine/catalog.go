// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

// PlaceholderItemID is the identity of the fallback item returned when a
// tier has no members at all. It never enters the unlock catalog.
const PlaceholderItemID = "mono-placeholder"

// placeholderItem is the last-resort selection fallback.
var placeholderItem = Item{
	ID:   PlaceholderItemID,
	Name: "Unmarked",
	Tier: TierMono,
	Style: Style{
		Color: Color{Hue: 0, Saturation: 0, Brightness: 0.5},
	},
}

// staticCommons is the fixed Common-tier catalog. The rare gate requires
// every identity here to be unlocked, so additions widen the common phase.
var staticCommons = []Item{
	{ID: "c-slate-pebble", Name: "Slate Pebble", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.58, Saturation: 0.18, Brightness: 0.62}}},
	{ID: "c-river-reed", Name: "River Reed", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.31, Saturation: 0.42, Brightness: 0.66}}},
	{ID: "c-clay-bead", Name: "Clay Bead", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.07, Saturation: 0.48, Brightness: 0.70}}},
	{ID: "c-dune-grass", Name: "Dune Grass", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.16, Saturation: 0.38, Brightness: 0.74}}},
	{ID: "c-tide-glass", Name: "Tide Glass", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.48, Saturation: 0.35, Brightness: 0.78}}},
	{ID: "c-moth-wing", Name: "Moth Wing", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.10, Saturation: 0.22, Brightness: 0.68}}},
	{ID: "c-fog-bank", Name: "Fog Bank", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.55, Saturation: 0.08, Brightness: 0.82}}},
	{ID: "c-birch-bark", Name: "Birch Bark", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.12, Saturation: 0.15, Brightness: 0.88}}},
	{ID: "c-iron-filing", Name: "Iron Filing", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.62, Saturation: 0.12, Brightness: 0.45}}},
	{ID: "c-moss-patch", Name: "Moss Patch", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.28, Saturation: 0.52, Brightness: 0.55}}},
	{ID: "c-sand-dollar", Name: "Sand Dollar", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.13, Saturation: 0.28, Brightness: 0.85}}},
	{ID: "c-rain-ring", Name: "Rain Ring", Tier: TierCommon, Style: Style{Color: Color{Hue: 0.52, Saturation: 0.30, Brightness: 0.72}}},
}

// staticRares is the fixed Rare-tier catalog. The special gate requires
// every identity here to be unlocked.
var staticRares = []Item{
	{ID: "r-aurora-veil", Name: "Aurora Veil", Tier: TierRare, Style: Style{Color: Color{Hue: 0.41, Saturation: 0.72, Brightness: 0.88}}},
	{ID: "r-ember-core", Name: "Ember Core", Tier: TierRare, Style: Style{Color: Color{Hue: 0.03, Saturation: 0.85, Brightness: 0.80}}},
	{ID: "r-deep-current", Name: "Deep Current", Tier: TierRare, Style: Style{Color: Color{Hue: 0.60, Saturation: 0.78, Brightness: 0.65}}},
	{ID: "r-violet-bloom", Name: "Violet Bloom", Tier: TierRare, Style: Style{Color: Color{Hue: 0.78, Saturation: 0.65, Brightness: 0.82}}},
	{ID: "r-gilt-thread", Name: "Gilt Thread", Tier: TierRare, Style: Style{Color: Color{Hue: 0.13, Saturation: 0.80, Brightness: 0.90}}},
	{ID: "r-glacier-heart", Name: "Glacier Heart", Tier: TierRare, Style: Style{Color: Color{Hue: 0.53, Saturation: 0.55, Brightness: 0.92}}},
}

// staticSpecials is the fixed Special-tier catalog, joined over time by
// generated specials.
var staticSpecials = []Item{
	{ID: "s-prism-crown", Name: "Prism Crown", Tier: TierSpecial, Style: Style{Color: Color{Hue: 0.85, Saturation: 0.90, Brightness: 0.95}, Pattern: PatternIconographic}},
	{ID: "s-night-meridian", Name: "Night Meridian", Tier: TierSpecial, Style: Style{Color: Color{Hue: 0.67, Saturation: 0.88, Brightness: 0.60}, Pattern: PatternStriped}},
	{ID: "s-solar-lattice", Name: "Solar Lattice", Tier: TierSpecial, Style: Style{Color: Color{Hue: 0.11, Saturation: 0.95, Brightness: 0.97}, Pattern: PatternGlyphTiled}},
}

// Catalog holds every item the sampler can materialize: the static tiers
// plus any generated batches registered during the session. Items are
// immutable once added. Insertion order within a tier is preserved so that
// index-based picks stay reproducible.
type Catalog struct {
	byTier           map[Tier][]Item
	byID             map[string]Item
	generatedSpecial int
}

// NewCatalog returns a catalog seeded with the static tiers.
func NewCatalog() *Catalog {
	c := &Catalog{
		byTier: make(map[Tier][]Item),
		byID:   make(map[string]Item),
	}
	c.addAll(staticCommons)
	c.addAll(staticRares)
	c.addAll(staticSpecials)
	return c
}

func (c *Catalog) addAll(items []Item) {
	for _, it := range items {
		if _, exists := c.byID[it.ID]; exists {
			continue
		}
		c.byTier[it.Tier] = append(c.byTier[it.Tier], it)
		c.byID[it.ID] = it
	}
}

// Register adds a generated batch's items to the catalog. Duplicate IDs
// are ignored, which makes re-registering a rederived batch safe.
func (c *Catalog) Register(items []Item) {
	for _, it := range items {
		if _, exists := c.byID[it.ID]; exists {
			continue
		}
		c.byTier[it.Tier] = append(c.byTier[it.Tier], it)
		c.byID[it.ID] = it
		if it.Generated && it.Tier == TierSpecial {
			c.generatedSpecial++
		}
	}
}

// ItemsOf returns the items of a tier in insertion order. The returned
// slice is shared; callers must not mutate it.
func (c *Catalog) ItemsOf(tier Tier) []Item {
	return c.byTier[tier]
}

// IDsOf returns the identities of a tier in insertion order.
func (c *Catalog) IDsOf(tier Tier) []string {
	items := c.byTier[tier]
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// Get returns the item with the given identity.
func (c *Catalog) Get(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// HasGeneratedSpecials reports whether any procedurally generated
// Special-tier item has been registered. These receive a floor weight in
// the rarity distribution before the special gate opens.
func (c *Catalog) HasGeneratedSpecials() bool {
	return c.generatedSpecial > 0
}

// Len returns the total number of cataloged items.
func (c *Catalog) Len() int {
	return len(c.byID)
}
