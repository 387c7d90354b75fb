// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

// Package store persists the engine's durable state in BadgerDB: batch
// records (seed plus metadata, items are rederived on read) and prior
// per-user aggregates carried across sessions.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/config"
	"github.com/mvail/scrollforge/internal/engine"
	"github.com/mvail/scrollforge/internal/metrics"
)

// Key prefixes. Batch keys embed the creation time so a prefix scan
// returns records in chronological order.
const (
	batchKeyPrefix = "batch:"
	priorKeyPrefix = "prior:"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("store: not found")

// Store wraps a Badger database.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens or creates the database at the configured path.
func Open(cfg config.StoreConfig, logger zerolog.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC runs value-log garbage collection on the given interval until ctx
// is canceled. Intended to run as a supervised background service.
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Badger returns ErrNoRewrite when there is nothing to
			// collect; anything else is worth logging.
			err := s.db.RunValueLogGC(0.5)
			switch {
			case err == nil:
				metrics.StoreOperations.WithLabelValues("gc", "ok").Inc()
			case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			default:
				metrics.StoreOperations.WithLabelValues("gc", "error").Inc()
				s.logger.Warn().Err(err).Msg("value log GC failed")
			}
		}
	}
}

// PutBatch persists a batch record under its session.
func (s *Store) PutBatch(ctx context.Context, sessionID string, rec engine.BatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal batch record: %w", err)
	}

	key := batchKey(sessionID, rec)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		metrics.StoreOperations.WithLabelValues("put", "error").Inc()
		return fmt.Errorf("put batch record: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("put", "ok").Inc()
	return nil
}

// BatchesOf returns a session's batch records in creation order.
func (s *Store) BatchesOf(ctx context.Context, sessionID string) ([]engine.BatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []engine.BatchRecord
	prefix := []byte(batchKeyPrefix + sessionID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec engine.BatchRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("unmarshal batch record: %w", err)
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.StoreOperations.WithLabelValues("scan", "error").Inc()
		return nil, err
	}
	metrics.StoreOperations.WithLabelValues("scan", "ok").Inc()
	return records, nil
}

// PutPrior stores the aggregates carried into a user's next session.
func (s *Store) PutPrior(ctx context.Context, userID string, agg engine.PriorAggregates) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("marshal prior aggregates: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(priorKeyPrefix+userID), data)
	})
	if err != nil {
		metrics.StoreOperations.WithLabelValues("put", "error").Inc()
		return fmt.Errorf("put prior aggregates: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("put", "ok").Inc()
	return nil
}

// Prior returns a user's stored aggregates, or ErrNotFound.
func (s *Store) Prior(ctx context.Context, userID string) (engine.PriorAggregates, error) {
	if err := ctx.Err(); err != nil {
		return engine.PriorAggregates{}, err
	}

	var agg engine.PriorAggregates
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(priorKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get prior aggregates: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &agg)
		})
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			metrics.StoreOperations.WithLabelValues("get", "error").Inc()
		}
		return engine.PriorAggregates{}, err
	}
	metrics.StoreOperations.WithLabelValues("get", "ok").Inc()
	return agg, nil
}

// batchKey builds batch:<session>:<nanos>:<seed>. The fixed-width nanos
// keep lexicographic and chronological order aligned.
func batchKey(sessionID string, rec engine.BatchRecord) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%016x", batchKeyPrefix, sessionID, rec.CreatedAt.UnixNano(), rec.Seed))
}
