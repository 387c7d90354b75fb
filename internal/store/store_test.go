// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/config"
	"github.com/mvail/scrollforge/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.StoreConfig{InMemory: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBatchRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := engine.BatchRecord{
		Seed:          0xFEEDFACE,
		TriggerItemID: "s-night-meridian",
		CreatedAt:     time.Unix(1700000000, 0).UTC(),
	}
	if err := s.PutBatch(ctx, "sess-1", rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.BatchesOf(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != rec {
		t.Errorf("loaded %+v, want [%+v]", got, rec)
	}
}

func TestBatchesOrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()

	// Insert out of order; the scan must come back chronological.
	for _, offset := range []int{3, 1, 2, 0} {
		rec := engine.BatchRecord{
			Seed:      uint64(100 + offset),
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		}
		if err := s.PutBatch(ctx, "sess-1", rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.BatchesOf(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("loaded %d records, want 4", len(got))
	}
	for i, rec := range got {
		if rec.Seed != uint64(100+i) {
			t.Errorf("record %d has seed %d, want %d", i, rec.Seed, 100+i)
		}
	}
}

func TestBatchesIsolatedBySession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.PutBatch(ctx, "sess-a", engine.BatchRecord{Seed: 1, CreatedAt: now})
	s.PutBatch(ctx, "sess-ab", engine.BatchRecord{Seed: 2, CreatedAt: now})

	got, err := s.BatchesOf(ctx, "sess-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Seed != 1 {
		t.Errorf("session prefix leaked records: %+v", got)
	}
}

func TestBatchesOfEmptySession(t *testing.T) {
	s := newTestStore(t)
	got, err := s.BatchesOf(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("empty session returned %d records", len(got))
	}
}

func TestPriorRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	agg := engine.PriorAggregates{Views: 512, Unlocks: 23}
	if err := s.PutPrior(ctx, "user-1", agg); err != nil {
		t.Fatal(err)
	}

	got, err := s.Prior(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != agg {
		t.Errorf("prior = %+v, want %+v", got, agg)
	}

	// Overwrite wins.
	agg.Views = 600
	if err := s.PutPrior(ctx, "user-1", agg); err != nil {
		t.Fatal(err)
	}
	if got, _ = s.Prior(ctx, "user-1"); got.Views != 600 {
		t.Errorf("overwritten prior views = %d, want 600", got.Views)
	}
}

func TestPriorNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Prior(context.Background(), "stranger")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing prior returned %v, want ErrNotFound", err)
	}
}

func TestCanceledContextRejected(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.PutBatch(ctx, "sess", engine.BatchRecord{Seed: 1, CreatedAt: time.Now()}); err == nil {
		t.Error("put with canceled context succeeded")
	}
	if _, err := s.BatchesOf(ctx, "sess"); err == nil {
		t.Error("scan with canceled context succeeded")
	}
}
