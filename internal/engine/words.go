// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

// Name word lists for generated items. One adjective and one noun are drawn
// per item, adjective space first, giving 2500 combinations. The lists are
// append-only: reordering or removing entries changes the items derived
// from existing persisted seeds.

var nameAdjectives = [50]string{
	"Amber", "Arcane", "Ashen", "Aurora", "Blazing",
	"Brindled", "Burnished", "Celestial", "Cinder", "Coiled",
	"Crystalline", "Dappled", "Drifting", "Dusky", "Ebon",
	"Echoing", "Ember", "Feathered", "Flickering", "Frosted",
	"Gilded", "Glacial", "Gleaming", "Gossamer", "Halcyon",
	"Hollow", "Iridescent", "Ivory", "Lacquered", "Luminous",
	"Marbled", "Misted", "Molten", "Mossy", "Nebular",
	"Obsidian", "Opaline", "Pearled", "Prismatic", "Radiant",
	"Rippled", "Runic", "Shrouded", "Silvered", "Sable",
	"Tidal", "Twilit", "Umbral", "Verdant", "Wandering",
}

var nameNouns = [50]string{
	"Anchor", "Beacon", "Bloom", "Bough", "Cairn",
	"Cascade", "Chalice", "Cinder", "Comet", "Coral",
	"Crest", "Crown", "Current", "Drift", "Echo",
	"Ember", "Fathom", "Fern", "Flare", "Fjord",
	"Garland", "Glade", "Glyph", "Grove", "Halo",
	"Harbor", "Hearth", "Hollow", "Keystone", "Lantern",
	"Lattice", "Meadow", "Mirror", "Monolith", "Nimbus",
	"Orchard", "Pinnacle", "Prism", "Quarry", "Relic",
	"Ridge", "Rune", "Shard", "Sigil", "Spire",
	"Summit", "Talisman", "Thicket", "Tide", "Wisp",
}
