// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/metrics"
)

// EventSink receives engine output events. Implementations must not call
// back into the session; they are invoked while the session lock is held.
type EventSink interface {
	// BatchInjected fires when a new content batch enters the catalog.
	// The payload is the durable batch identity only.
	BatchInjected(sessionID string, rec BatchRecord)

	// InterventionFired fires when the scheduler intervenes. Collaborators
	// render the chosen kinds (haptics, audio, social-proof toast).
	InterventionFired(sessionID string, decision InterventionDecision)
}

// NopSink discards all events.
type NopSink struct{}

// BatchInjected implements EventSink.
func (NopSink) BatchInjected(string, BatchRecord) {}

// InterventionFired implements EventSink.
func (NopSink) InterventionFired(string, InterventionDecision) {}

// PriorAggregates carries opaque prior-session counts used for a
// landing-screen baseline. The engine never interprets them beyond echoing
// them in session stats.
type PriorAggregates struct {
	Views   int `json:"views"`
	Unlocks int `json:"unlocks"`
}

// VisibleResult reports what one visibility event changed.
type VisibleResult struct {
	Decision     InterventionDecision `json:"decision"`
	Unlocked     *Item                `json:"unlocked,omitempty"`
	Batch        *BatchRecord         `json:"batch,omitempty"`
	InjectedSlot int                  `json:"injected_slot,omitempty"`
	Injected     bool                 `json:"injected"`
}

// SessionStats is a read-only snapshot of session progress.
type SessionStats struct {
	ID               string          `json:"id"`
	TotalViews       int             `json:"total_views"`
	UniqueViews      int             `json:"unique_views"`
	UnlockedCount    int             `json:"unlocked_count"`
	ViewsSinceUnlock int             `json:"views_since_unlock"`
	ScrollPosition   int             `json:"scroll_position"`
	FeedLength       int             `json:"feed_length"`
	Velocity         float64         `json:"velocity"`
	Trend            float64         `json:"trend"`
	ChurnProbability float64         `json:"churn_probability"`
	Weights          Weights         `json:"weights"`
	SessionSeconds   float64         `json:"session_seconds"`
	ActiveSeconds    float64         `json:"active_seconds"`
	Prior            PriorAggregates `json:"prior"`
}

// Session owns all mutable engagement state for one user: the unlock set,
// the feed slot array, the rolling windows, and the cooldown marker.
//
// Processing is single-threaded from the perspective of the feed-scroll
// event stream: the session lock serializes events, and each event is
// processed to completion (tracker update, snapshot, scoring, optional
// intervention and generation) before the next is accepted. The timestamp
// passed to OnItemVisible is read once and reused throughout that event.
// There is no cross-session shared mutable state.
type Session struct {
	id     string
	cfg    *Config
	logger zerolog.Logger
	sink   EventSink

	mu sync.Mutex

	catalog   *Catalog
	unlocks   *UnlockSet
	sampler   *Sampler
	generator *Generator
	scheduler *Scheduler
	tracker   *Tracker

	feed []FeedSlot

	totalViews       int
	uniqueViews      int
	viewsSinceUnlock int
	scrollPos        int

	startedAt     time.Time
	lastEventAt   time.Time
	activeSeconds float64

	lastWeights Weights
	lastChurn   float64

	prior PriorAggregates
}

// NewSession constructs a fully wired session. An unknown predictor name is
// a fatal configuration error surfaced here, at wiring time; the predictor
// itself can never fail at runtime.
func NewSession(id string, cfg *Config, logger zerolog.Logger, sink EventSink, prior PriorAggregates, now time.Time) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if sink == nil {
		sink = NopSink{}
	}

	var predictor Predictor
	switch cfg.Predictor {
	case PredictorHeuristic:
		predictor = NewHeuristicPredictor(cfg.Heuristic)
	default:
		return nil, fmt.Errorf("unknown predictor %q", cfg.Predictor)
	}

	catalog := NewCatalog()
	unlocks := NewUnlockSet()

	s := &Session{
		id:          id,
		cfg:         cfg,
		logger:      logger.With().Str("component", "session").Str("session_id", id).Logger(),
		sink:        sink,
		catalog:     catalog,
		unlocks:     unlocks,
		sampler:     NewSampler(cfg.Rarity, catalog, unlocks),
		generator:   NewGenerator(cfg.Generator),
		scheduler:   NewScheduler(cfg.Scheduler, predictor),
		tracker:     NewTracker(),
		startedAt:   now,
		lastEventAt: now,
		lastWeights: Weights{Mono: 1},
		prior:       prior,
	}
	s.ensureSlotsLocked(cfg.Lookahead)
	return s, nil
}

// ID returns the session identity.
func (s *Session) ID() string {
	return s.id
}

// OnItemVisible is the sole entry point driving tracker updates, churn
// scoring, gating, and interventions. slotIndex is the feed position that
// just became visible; now is read once and reused for the whole event.
func (s *Session) OnItemVisible(slotIndex int, now time.Time) (VisibleResult, error) {
	if slotIndex < 0 {
		return VisibleResult{}, fmt.Errorf("slot index %d out of range", slotIndex)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer metrics.ObserveVisibilityEvent(start)

	s.ensureSlotsLocked(slotIndex + s.cfg.Lookahead)

	s.advanceClocks(now)
	s.tracker.Observe(now)

	result := s.observeSlot(slotIndex)
	s.scrollPos = slotIndex
	s.sampler.NoteView(s.totalViews)
	s.lastWeights = s.sampler.Distribution(s.uniqueViews)

	snap := s.scrollSnapshot()
	decision := s.scheduler.Evaluate(snap)
	s.lastChurn = decision.Probability
	metrics.ChurnScore.Observe(decision.Probability)
	result.Decision = decision

	if decision.Triggered {
		s.applyIntervention(&result, decision)
	}

	if result.Unlocked != nil && result.Unlocked.Tier == TierSpecial {
		result.Batch = s.generateBatch(result.Unlocked.ID, now)
	}

	return result, nil
}

// EnsureSlotsGenerated lazily materializes feed slots ahead of the given
// index. It is idempotent and safe to call every tick.
func (s *Session) EnsureSlotsGenerated(aheadOfIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSlotsLocked(aheadOfIndex)
}

// Feed returns a copy of the slots in [from, from+count), materializing
// them if needed.
func (s *Session) Feed(from, count int) []FeedSlot {
	if from < 0 {
		from = 0
	}
	if count < 1 {
		count = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureSlotsLocked(from + count)
	out := make([]FeedSlot, count)
	copy(out, s.feed[from:from+count])
	return out
}

// Stats returns a read-only snapshot of session progress.
func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionStats{
		ID:               s.id,
		TotalViews:       s.totalViews,
		UniqueViews:      s.uniqueViews,
		UnlockedCount:    s.unlocks.Len(),
		ViewsSinceUnlock: s.viewsSinceUnlock,
		ScrollPosition:   s.scrollPos,
		FeedLength:       len(s.feed),
		Velocity:         s.tracker.Velocity(),
		Trend:            s.tracker.Trend(),
		ChurnProbability: s.lastChurn,
		Weights:          s.lastWeights,
		SessionSeconds:   s.lastEventAt.Sub(s.startedAt).Seconds(),
		ActiveSeconds:    s.activeSeconds,
		Prior:            s.prior,
	}
}

// DeriveBatch recomputes the item list of a persisted batch record.
func (s *Session) DeriveBatch(rec BatchRecord) []Item {
	return s.generator.DeriveItems(rec.Seed)
}

// ensureSlotsLocked extends the feed so that index aheadOfIndex exists.
// Must be called with mu held.
func (s *Session) ensureSlotsLocked(aheadOfIndex int) {
	for len(s.feed) <= aheadOfIndex {
		slot := s.sampler.MaterializeSlot(s.uniqueViews)
		tier := TierMono
		if slot.Item != nil {
			tier = slot.Item.Tier
		}
		metrics.SlotsMaterialized.WithLabelValues(tier.String()).Inc()
		s.feed = append(s.feed, slot)
	}
}

// advanceClocks accumulates session and active-scroll time. Inter-event
// gaps longer than the active gap count as idle.
func (s *Session) advanceClocks(now time.Time) {
	delta := now.Sub(s.lastEventAt).Seconds()
	if delta < 0 {
		delta = 0
	}
	if delta <= s.cfg.ActiveGapSeconds {
		s.activeSeconds += delta
	}
	s.lastEventAt = now
}

// observeSlot marks the slot seen and performs unlock bookkeeping.
// Must be called with mu held.
func (s *Session) observeSlot(slotIndex int) VisibleResult {
	var result VisibleResult

	s.totalViews++
	slot := &s.feed[slotIndex]
	firstSighting := !slot.Seen
	if firstSighting {
		slot.Seen = true
		s.uniqueViews++
	}

	if slot.Item != nil && s.unlocks.Add(slot.Item.ID) {
		unlocked := *slot.Item
		result.Unlocked = &unlocked
		s.viewsSinceUnlock = 0
		s.sampler.NoteFirstSighting(unlocked.Tier)
		metrics.Unlocks.WithLabelValues(unlocked.Tier.String()).Inc()
		s.logger.Debug().
			Str("item_id", unlocked.ID).
			Str("tier", unlocked.Tier.String()).
			Int("unlocked_count", s.unlocks.Len()).
			Msg("item unlocked")
	} else {
		s.viewsSinceUnlock++
	}

	return result
}

// scrollSnapshot builds the derived feature vector for churn scoring.
// Must be called with mu held.
func (s *Session) scrollSnapshot() ScrollSnapshot {
	unlockDensity := 0.0
	if s.totalViews > 0 {
		unlockDensity = float64(s.unlocks.Len()) / float64(s.totalViews)
	}
	drought := float64(s.viewsSinceUnlock) / float64(s.cfg.Heuristic.DroughtSpan)
	if drought > 1 {
		drought = 1
	}

	return ScrollSnapshot{
		ViewsSinceUnlock: s.viewsSinceUnlock,
		Velocity:         s.tracker.Velocity(),
		Trend:            s.tracker.Trend(),
		UnlockDensity:    unlockDensity,
		RewardDrought:    drought,
		SessionSeconds:   s.lastEventAt.Sub(s.startedAt).Seconds(),
		ActiveSeconds:    s.activeSeconds,
		TotalViews:       s.totalViews,
		UnlockedCount:    s.unlocks.Len(),
	}
}

// applyIntervention performs the content injection half of a triggered
// decision and emits the intervention event. Injection silently degrades
// to the non-content kinds when no eligible slot or locked reward exists.
// Must be called with mu held.
func (s *Session) applyIntervention(result *VisibleResult, decision InterventionDecision) {
	if decision.HasKind(KindInjectReward) {
		idx, item, ok := s.scheduler.InjectReward(s.feed, s.scrollPos, s.catalog, s.unlocks)
		if ok {
			result.Injected = true
			result.InjectedSlot = idx
			s.logger.Debug().
				Int("slot", idx).
				Str("item_id", item.ID).
				Str("tier", item.Tier.String()).
				Float64("churn", decision.Probability).
				Msg("reward injected")
		} else {
			metrics.InterventionsDegraded.Inc()
		}
	}

	kinds := make([]string, len(decision.Kinds))
	for i, k := range decision.Kinds {
		kinds[i] = string(k)
	}
	metrics.RecordIntervention(kinds)
	s.sink.InterventionFired(s.id, decision)
}

// generateBatch runs the content generation pipeline off a Special-tier
// unlock: hash the behavior snapshot into a seed, derive the batch,
// register it with the catalog, and open its boost window.
// Must be called with mu held.
func (s *Session) generateBatch(triggerItemID string, now time.Time) *BatchRecord {
	snapshot := BehaviorSnapshot{
		TotalViews:     s.totalViews,
		UniqueViews:    s.uniqueViews,
		ActiveSeconds:  s.activeSeconds,
		SessionSeconds: s.lastEventAt.Sub(s.startedAt).Seconds(),
		ScrollPosition: s.scrollPos,
		TimeBucket:     now.Hour() / 6,
		Weights:        s.lastWeights,
		TriggerItemID:  triggerItemID,
	}

	seed := SnapshotSeed(snapshot)
	batch := s.generator.GenerateBatch(seed, triggerItemID, now)
	s.catalog.Register(batch.Items)
	s.sampler.RegisterBoost(batch.Items)

	metrics.BatchesGenerated.Inc()
	s.logger.Info().
		Uint64("seed", seed).
		Str("trigger", triggerItemID).
		Int("items", len(batch.Items)).
		Msg("content batch generated")

	rec := batch.Record()
	s.sink.BatchInjected(s.id, rec)
	return &rec
}
