// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import "testing"

func baseSnapshot() BehaviorSnapshot {
	return BehaviorSnapshot{
		TotalViews:     100,
		UniqueViews:    60,
		ActiveSeconds:  45.5,
		SessionSeconds: 120.25,
		ScrollPosition: 99,
		TimeBucket:     2,
		Weights:        Weights{Mono: 0.1, Common: 0.6, Rare: 0.25, Special: 0.05},
		TriggerItemID:  "r-ember-core",
	}
}

func TestSnapshotSeedDeterministic(t *testing.T) {
	a := SnapshotSeed(baseSnapshot())
	b := SnapshotSeed(baseSnapshot())
	if a != b {
		t.Fatalf("identical snapshots hashed differently: %d != %d", a, b)
	}
}

func TestSnapshotSeedFieldSensitivity(t *testing.T) {
	base := SnapshotSeed(baseSnapshot())

	mutations := map[string]BehaviorSnapshot{}

	s := baseSnapshot()
	s.TotalViews++
	mutations["total_views"] = s

	s = baseSnapshot()
	s.UniqueViews++
	mutations["unique_views"] = s

	s = baseSnapshot()
	s.ActiveSeconds += 0.001
	mutations["active_seconds"] = s

	s = baseSnapshot()
	s.SessionSeconds += 0.001
	mutations["session_seconds"] = s

	s = baseSnapshot()
	s.ScrollPosition++
	mutations["scroll_position"] = s

	s = baseSnapshot()
	s.TimeBucket = 3
	mutations["time_bucket"] = s

	s = baseSnapshot()
	s.Weights.Rare += 1e-9
	mutations["weights"] = s

	s = baseSnapshot()
	s.TriggerItemID = "r-ember-corf"
	mutations["trigger_item_id"] = s

	for field, snap := range mutations {
		if SnapshotSeed(snap) == base {
			t.Errorf("mutating %s did not change the seed", field)
		}
	}
}

func TestSnapshotSeedNoCollisionsAcrossViews(t *testing.T) {
	// Snapshots differing only in TotalViews by one must not collide
	// across a large sample.
	seen := make(map[uint64]int, 10000)
	for views := 0; views < 10000; views++ {
		s := baseSnapshot()
		s.TotalViews = views
		seed := SnapshotSeed(s)
		if prev, dup := seen[seed]; dup {
			t.Fatalf("seed collision between total_views=%d and total_views=%d", prev, views)
		}
		seen[seed] = views
	}
}

func TestSnapshotSeedEmptyTrigger(t *testing.T) {
	a := baseSnapshot()
	a.TriggerItemID = ""
	b := baseSnapshot()
	b.TriggerItemID = "x"
	if SnapshotSeed(a) == SnapshotSeed(b) {
		t.Error("empty and non-empty trigger IDs hashed identically")
	}
}
