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

// Manager routes by session ID and owns session lifecycle. Each session's
// state is fully isolated; the manager itself holds no engagement state and
// only guards the routing map.
type Manager struct {
	cfg    *Config
	logger zerolog.Logger
	sink   EventSink

	mu       sync.RWMutex
	sessions map[string]*managedSession
}

// managedSession pairs a session with its last-touched time for eviction.
type managedSession struct {
	session   *Session
	lastTouch time.Time
}

// NewManager returns a manager creating sessions from the given config.
func NewManager(cfg *Config, logger zerolog.Logger, sink EventSink) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger.With().Str("component", "manager").Logger(),
		sink:     sink,
		sessions: make(map[string]*managedSession),
	}, nil
}

// Create constructs and registers a new session.
func (m *Manager) Create(id string, prior PriorAggregates, now time.Time) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session %q already exists", id)
	}

	s, err := NewSession(id, m.cfg, m.logger, m.sink, prior, now)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.sessions[id] = &managedSession{session: s, lastTouch: now}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.logger.Info().Str("session_id", id).Msg("session created")
	return s, nil
}

// Get returns the session with the given ID and refreshes its idle timer.
func (m *Manager) Get(id string, now time.Time) (*Session, bool) {
	m.mu.RLock()
	ms, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	m.mu.Lock()
	ms.lastTouch = now
	m.mu.Unlock()
	return ms.session, true
}

// Remove deletes a session.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.logger.Info().Str("session_id", id).Msg("session removed")
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictIdle removes sessions untouched for longer than maxIdle and returns
// how many were evicted.
func (m *Manager) EvictIdle(maxIdle time.Duration, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, ms := range m.sessions {
		if now.Sub(ms.lastTouch) > maxIdle {
			delete(m.sessions, id)
			evicted++
			m.logger.Debug().Str("session_id", id).Msg("session evicted")
		}
	}
	if evicted > 0 {
		metrics.ActiveSessions.Set(float64(len(m.sessions)))
		metrics.SessionsEvicted.Add(float64(evicted))
	}
	return evicted
}
