// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"github.com/mvail/scrollforge/internal/rng"
)

// SchedulerConfig contains the intervention thresholds.
type SchedulerConfig struct {
	// Threshold is the minimum churn probability that triggers an
	// intervention. Default: 0.55.
	Threshold float64 `json:"threshold"`

	// FullSetBound is the churn probability at and above which the full
	// intervention set fires. Default: 0.70.
	FullSetBound float64 `json:"full_set_bound"`

	// CooldownViews is the minimum view-count spacing between
	// interventions. Default: 12.
	CooldownViews int `json:"cooldown_views"`

	// ScanAhead is how many upcoming feed slots the injector inspects.
	// Default: 3.
	ScanAhead int `json:"scan_ahead"`

	// Seed initializes the scheduler's private roll stream. If zero, a
	// fixed default is used.
	Seed uint64 `json:"seed"`
}

// DefaultSchedulerConfig returns the reference thresholds.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Threshold:     0.55,
		FullSetBound:  0.70,
		CooldownViews: 12,
		ScanAhead:     3,
		Seed:          42,
	}
}

// SchedulerState is the scheduler's state machine position. Evaluation runs
// to completion within one visibility event; between events the state rests
// on the last outcome (StateNoAction or StateIntervening) until the next
// evaluation begins.
type SchedulerState int

// Scheduler states.
const (
	StateIdle SchedulerState = iota
	StateEvaluating
	StateNoAction
	StateIntervening
)

// String returns the state name.
func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateNoAction:
		return "no_action"
	case StateIntervening:
		return "intervening"
	default:
		return "unknown"
	}
}

// Scheduler thresholds churn probability, enforces the view-count cooldown,
// chooses intervention kinds, and injects reward content into upcoming feed
// slots. Owned by a single session; not safe for concurrent use.
type Scheduler struct {
	cfg       SchedulerConfig
	predictor Predictor
	rand      *rng.Rand
	state     SchedulerState

	// lastInterventionViews only ever advances forward. It starts far in
	// the negative so the first qualifying event is never cooldown-blocked.
	lastInterventionViews int
}

// NewScheduler returns a scheduler using the given predictor.
func NewScheduler(cfg SchedulerConfig, predictor Predictor) *Scheduler {
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	return &Scheduler{
		cfg:                   cfg,
		predictor:             predictor,
		rand:                  rng.New(seed),
		state:                 StateIdle,
		lastInterventionViews: -(1 << 30),
	}
}

// State returns the scheduler's current state machine position.
func (s *Scheduler) State() SchedulerState {
	return s.state
}

// LastInterventionViews returns the view count of the most recent trigger.
func (s *Scheduler) LastInterventionViews() int {
	return s.lastInterventionViews
}

// Evaluate scores the snapshot and decides whether to intervene. The
// cooldown marker advances the moment an intervention triggers, not on its
// completion, which prevents re-entrant triggering while a reward is being
// injected.
func (s *Scheduler) Evaluate(snap ScrollSnapshot) InterventionDecision {
	s.state = StateEvaluating

	p := s.predictor.ChurnProbability(snap)
	cooldownPassed := snap.TotalViews-s.lastInterventionViews >= s.cfg.CooldownViews

	decision := InterventionDecision{
		Probability:    p,
		CooldownPassed: cooldownPassed,
	}

	if p < s.cfg.Threshold || !cooldownPassed {
		s.state = StateNoAction
		return decision
	}

	s.state = StateIntervening
	s.lastInterventionViews = snap.TotalViews

	decision.Triggered = true
	decision.Kinds = s.chooseKinds(p)
	return decision
}

// chooseKinds always selects reward injection; at FullSetBound and above it
// adds the full set, otherwise a reduced one with a coin-flip social-proof
// message.
func (s *Scheduler) chooseKinds(p float64) []InterventionKind {
	kinds := []InterventionKind{KindInjectReward, KindHaptic}
	if p >= s.cfg.FullSetBound {
		return append(kinds, KindSound, KindSocialProof)
	}
	if s.rand.Bool() {
		kinds = append(kinds, KindSocialProof)
	}
	return kinds
}

// InjectReward scans the slots just ahead of the scroll position and
// replaces the first placeholder or unseen Common slot with a randomly
// chosen not-yet-unlocked Rare, falling back to a not-yet-unlocked Special.
// Slots already holding Rare or Special items are never overwritten, nor is
// a slot replaced twice. It returns the injected item and slot index, or
// false when the intervention degrades to its non-content effects.
func (s *Scheduler) InjectReward(feed []FeedSlot, pos int, catalog *Catalog, unlocks *UnlockSet) (int, *Item, bool) {
	reward, ok := s.pickLockedReward(catalog, unlocks)
	if !ok {
		return 0, nil, false
	}

	for i := pos + 1; i <= pos+s.cfg.ScanAhead && i < len(feed); i++ {
		slot := &feed[i]
		if !s.eligibleForInjection(slot) {
			continue
		}
		slot.Item = &reward
		slot.Shade = 0
		slot.Injected = true
		return i, slot.Item, true
	}
	return 0, nil, false
}

// eligibleForInjection reports whether a slot may be overwritten: only
// unseen placeholder or Common slots, and only once.
func (s *Scheduler) eligibleForInjection(slot *FeedSlot) bool {
	if slot.Seen || slot.Injected {
		return false
	}
	return slot.IsPlaceholder() || slot.Item.Tier == TierCommon
}

// pickLockedReward draws a locked Rare, or a locked Special when every
// Rare is already unlocked.
func (s *Scheduler) pickLockedReward(catalog *Catalog, unlocks *UnlockSet) (Item, bool) {
	for _, tier := range []Tier{TierRare, TierSpecial} {
		var locked []Item
		for _, it := range catalog.ItemsOf(tier) {
			if !unlocks.Has(it.ID) {
				locked = append(locked, it)
			}
		}
		if len(locked) > 0 {
			return rng.Pick(s.rand, locked), true
		}
	}
	return Item{}, false
}
