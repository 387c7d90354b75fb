// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"testing"
)

func TestSchedulerCooldownSpacing(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 0.60})

	d := sched.Evaluate(ScrollSnapshot{TotalViews: 100})
	if !d.Triggered {
		t.Fatal("first qualifying event did not trigger")
	}

	d = sched.Evaluate(ScrollSnapshot{TotalViews: 105})
	if d.Triggered {
		t.Error("intervention triggered inside the cooldown")
	}
	if d.CooldownPassed {
		t.Error("cooldown reported passed at 5 views of spacing")
	}

	d = sched.Evaluate(ScrollSnapshot{TotalViews: 113})
	if !d.Triggered {
		t.Error("intervention did not trigger after the cooldown elapsed")
	}
	if sched.LastInterventionViews() != 113 {
		t.Errorf("cooldown marker = %d, want 113", sched.LastInterventionViews())
	}
}

func TestSchedulerFirstEventNeverBlocked(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 0.80})
	d := sched.Evaluate(ScrollSnapshot{TotalViews: 0})
	if !d.Triggered {
		t.Error("fresh scheduler blocked its first qualifying event")
	}
}

func TestSchedulerBelowThreshold(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 0.54})
	d := sched.Evaluate(ScrollSnapshot{TotalViews: 50})
	if d.Triggered {
		t.Error("triggered below the threshold")
	}
	if !d.CooldownPassed {
		t.Error("cooldown not passed on a fresh scheduler")
	}
	if len(d.Kinds) != 0 {
		t.Errorf("non-trigger carries kinds: %v", d.Kinds)
	}
	if sched.State() != StateNoAction {
		t.Errorf("state = %v, want no_action", sched.State())
	}
}

func TestSchedulerKindSelection(t *testing.T) {
	t.Run("full set at the bound", func(t *testing.T) {
		sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 0.70})
		d := sched.Evaluate(ScrollSnapshot{TotalViews: 10})
		if len(d.Kinds) != 4 {
			t.Fatalf("kinds = %v, want the full set", d.Kinds)
		}
		for _, k := range []InterventionKind{KindInjectReward, KindHaptic, KindSound, KindSocialProof} {
			if !d.HasKind(k) {
				t.Errorf("full set missing %q", k)
			}
		}
	})

	t.Run("reduced set below the bound", func(t *testing.T) {
		sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 0.60})
		// Cooldown of zero lets every event trigger; over many draws the
		// coin-flip social proof must appear both ways, and sound never.
		sched.cfg.CooldownViews = 0

		sawSocial, sawPlain := false, false
		for i := 0; i < 100; i++ {
			d := sched.Evaluate(ScrollSnapshot{TotalViews: i})
			if !d.Triggered {
				t.Fatal("reduced-set event did not trigger")
			}
			if !d.HasKind(KindInjectReward) || !d.HasKind(KindHaptic) {
				t.Fatalf("reduced set missing mandatory kinds: %v", d.Kinds)
			}
			if d.HasKind(KindSound) {
				t.Fatalf("reduced set includes sound: %v", d.Kinds)
			}
			if d.HasKind(KindSocialProof) {
				sawSocial = true
			} else {
				sawPlain = true
			}
		}
		if !sawSocial || !sawPlain {
			t.Error("social proof coin flip never varied across 100 draws")
		}
	})
}

func TestSchedulerStateMachine(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 0.90})
	if sched.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", sched.State())
	}

	sched.Evaluate(ScrollSnapshot{TotalViews: 5})
	if sched.State() != StateIntervening {
		t.Errorf("post-trigger state = %v, want intervening", sched.State())
	}

	sched.Evaluate(ScrollSnapshot{TotalViews: 6})
	if sched.State() != StateNoAction {
		t.Errorf("cooldown-blocked state = %v, want no_action", sched.State())
	}
}

func TestInjectRewardPicksFirstEligibleSlot(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 1})
	catalog := NewCatalog()
	unlocks := NewUnlockSet()

	rare := catalog.ItemsOf(TierRare)[0]
	common := catalog.ItemsOf(TierCommon)[0]

	feed := []FeedSlot{
		{Item: &common, Seen: true},  // position: already consumed
		{Item: &common, Seen: true},  // seen, ineligible
		{Item: &rare},                // rare, never overwritten
		{Item: &common},              // unseen common: the target
		{Shade: 0.3},                 // beyond the scan window
	}

	idx, injected, ok := sched.InjectReward(feed, 0, catalog, unlocks)
	if !ok {
		t.Fatal("injection degraded with an eligible slot in range")
	}
	if idx != 3 {
		t.Fatalf("injected at slot %d, want 3", idx)
	}
	if injected.Tier != TierRare || unlocks.Has(injected.ID) {
		t.Errorf("injected %q (%v), want a locked rare", injected.ID, injected.Tier)
	}
	if !feed[3].Injected || feed[3].Item.ID != injected.ID {
		t.Error("target slot not rewritten in place")
	}
	if feed[2].Item.ID != rare.ID {
		t.Error("rare slot was overwritten")
	}
}

func TestInjectRewardNeverOverwritesRareOrSpecial(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 1})
	catalog := NewCatalog()
	unlocks := NewUnlockSet()

	rare := catalog.ItemsOf(TierRare)[1]
	special := catalog.ItemsOf(TierSpecial)[0]

	feed := []FeedSlot{
		{Shade: 0.5, Seen: true},
		{Item: &rare},
		{Item: &special},
		{Item: &rare},
	}

	_, _, ok := sched.InjectReward(feed, 0, catalog, unlocks)
	if ok {
		t.Fatal("injection succeeded with only rare and special slots in range")
	}
	if feed[1].Injected || feed[2].Injected || feed[3].Injected {
		t.Error("a protected slot was marked injected")
	}
}

func TestInjectRewardSlotReplacedAtMostOnce(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 1})
	catalog := NewCatalog()
	unlocks := NewUnlockSet()

	feed := []FeedSlot{
		{Shade: 0.1, Seen: true},
		{Shade: 0.2},
		{Item: &placeholderItem, Seen: true},
		{Shade: 0.4, Seen: true},
	}

	idx, first, ok := sched.InjectReward(feed, 0, catalog, unlocks)
	if !ok || idx != 1 {
		t.Fatalf("first injection at slot %d (ok=%v), want 1", idx, ok)
	}

	// The same slot is now marked injected and nothing else is eligible.
	_, _, ok = sched.InjectReward(feed, 0, catalog, unlocks)
	if ok {
		t.Fatal("second injection overwrote an already-injected slot")
	}
	if feed[1].Item.ID != first.ID {
		t.Error("injected slot content changed on the failed second pass")
	}
}

func TestInjectRewardFallsBackToSpecial(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 1})
	catalog := NewCatalog()
	unlocks := NewUnlockSet()
	for _, id := range catalog.IDsOf(TierRare) {
		unlocks.Add(id)
	}

	feed := []FeedSlot{{Shade: 0.1, Seen: true}, {Shade: 0.2}}
	_, injected, ok := sched.InjectReward(feed, 0, catalog, unlocks)
	if !ok {
		t.Fatal("injection degraded with locked specials available")
	}
	if injected.Tier != TierSpecial {
		t.Errorf("fallback injected %v, want a special", injected.Tier)
	}
}

func TestInjectRewardDegradesWithNothingLocked(t *testing.T) {
	sched := NewScheduler(DefaultSchedulerConfig(), fixedPredictor{p: 1})
	catalog := NewCatalog()
	unlocks := NewUnlockSet()
	for _, id := range catalog.IDsOf(TierRare) {
		unlocks.Add(id)
	}
	for _, id := range catalog.IDsOf(TierSpecial) {
		unlocks.Add(id)
	}

	feed := []FeedSlot{{Shade: 0.1, Seen: true}, {Shade: 0.2}}
	_, _, ok := sched.InjectReward(feed, 0, catalog, unlocks)
	if ok {
		t.Error("injection succeeded with every reward already unlocked")
	}
}
