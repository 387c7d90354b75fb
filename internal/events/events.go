// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package events carries engine output onto the message bus. Every event
// is schema-versioned JSON; the in-process bus always runs, and an
// external NATS publisher can be attached when compiled in.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mvail/scrollforge/internal/engine"
)

// SchemaVersion is the current event schema version. Increment on breaking
// changes to the event payloads.
const SchemaVersion = 1

// Topics published by the bus.
const (
	// TopicBatches carries BatchGeneratedEvent payloads.
	TopicBatches = "engagement.batches"

	// TopicInterventions carries InterventionEvent payloads.
	TopicInterventions = "engagement.interventions"
)

// BatchGeneratedEvent announces that a generated content batch entered a
// session's catalog. Only the durable batch identity travels; consumers
// rederive items from the seed.
type BatchGeneratedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	Seed          uint64    `json:"seed"`
	TriggerItemID string    `json:"trigger_item_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBatchGeneratedEvent builds the event for a batch record.
func NewBatchGeneratedEvent(sessionID string, rec engine.BatchRecord) *BatchGeneratedEvent {
	return &BatchGeneratedEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		SessionID:     sessionID,
		Seed:          rec.Seed,
		TriggerItemID: rec.TriggerItemID,
		CreatedAt:     rec.CreatedAt,
	}
}

// Validate checks required fields.
func (e *BatchGeneratedEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if e.Seed == 0 {
		return fmt.Errorf("seed is required")
	}
	return nil
}

// InterventionEvent announces a triggered intervention. Presentation
// collaborators subscribe to render the non-content kinds.
type InterventionEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	Probability   float64   `json:"probability"`
	Kinds         []string  `json:"kinds"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewInterventionEvent builds the event for a scheduler decision.
func NewInterventionEvent(sessionID string, d engine.InterventionDecision) *InterventionEvent {
	kinds := make([]string, len(d.Kinds))
	for i, k := range d.Kinds {
		kinds[i] = string(k)
	}
	return &InterventionEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		SessionID:     sessionID,
		Probability:   d.Probability,
		Kinds:         kinds,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *InterventionEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if len(e.Kinds) == 0 {
		return fmt.Errorf("kinds must be non-empty")
	}
	return nil
}

// Marshal serializes an event payload.
func Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalBatch deserializes a BatchGeneratedEvent.
func UnmarshalBatch(data []byte) (*BatchGeneratedEvent, error) {
	var e BatchGeneratedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal batch event: %w", err)
	}
	return &e, nil
}

// UnmarshalIntervention deserializes an InterventionEvent.
func UnmarshalIntervention(data []byte) (*InterventionEvent, error) {
	var e InterventionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal intervention event: %w", err)
	}
	return &e, nil
}
