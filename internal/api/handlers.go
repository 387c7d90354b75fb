// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/engine"
	"github.com/mvail/scrollforge/internal/logging"
	"github.com/mvail/scrollforge/internal/store"
)

// Handler wires the HTTP surface to the session manager and the store.
type Handler struct {
	manager *engine.Manager
	store   *store.Store
	logger  zerolog.Logger

	// owners maps session ID to user ID so prior aggregates can be
	// written back when the session ends.
	mu     sync.RWMutex
	owners map[string]string
}

// NewHandler creates the API handler.
func NewHandler(manager *engine.Manager, st *store.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		store:   st,
		logger:  logger.With().Str("component", "api").Logger(),
		owners:  make(map[string]string),
	}
}

// sessionResponse is the session payload returned by create and get.
type sessionResponse struct {
	SessionID string              `json:"session_id"`
	UserID    string              `json:"user_id,omitempty"`
	Stats     engine.SessionStats `json:"stats"`
}

// createSession handles POST /api/v1/sessions.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var prior engine.PriorAggregates
	if req.UserID != "" {
		agg, err := h.store.Prior(r.Context(), req.UserID)
		switch {
		case err == nil:
			prior = agg
		case errors.Is(err, store.ErrNotFound):
			// First session for this user.
		default:
			logging.Ctx(r.Context()).Error().Err(err).Str("user_id", req.UserID).Msg("prior lookup failed")
			writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "prior aggregates unavailable")
			return
		}
	}

	sess, err := h.manager.Create(sessionID, prior, time.Now())
	if err != nil {
		writeError(w, r, http.StatusConflict, ErrCodeConflict, err.Error())
		return
	}

	if req.UserID != "" {
		h.mu.Lock()
		h.owners[sessionID] = req.UserID
		h.mu.Unlock()
	}

	logging.Ctx(r.Context()).Info().
		Str("session_id", sessionID).
		Str("user_id", req.UserID).
		Msg("session created")

	writeJSON(w, r, http.StatusCreated, sessionResponse{
		SessionID: sessionID,
		UserID:    req.UserID,
		Stats:     sess.Stats(),
	})
}

// getSession handles GET /api/v1/sessions/{sessionID}.
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.mu.RLock()
	userID := h.owners[sess.ID()]
	h.mu.RUnlock()

	writeJSON(w, r, http.StatusOK, sessionResponse{
		SessionID: sess.ID(),
		UserID:    userID,
		Stats:     sess.Stats(),
	})
}

// deleteSession handles DELETE /api/v1/sessions/{sessionID}. When the
// session belongs to a known user, its totals are folded into the stored
// prior aggregates before removal.
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, ok := h.manager.Get(sessionID, time.Now())
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	stats := sess.Stats()
	h.mu.Lock()
	userID := h.owners[sessionID]
	delete(h.owners, sessionID)
	h.mu.Unlock()

	if userID != "" {
		agg := engine.PriorAggregates{
			Views:   stats.Prior.Views + stats.TotalViews,
			Unlocks: stats.Prior.Unlocks + stats.UnlockedCount,
		}
		if err := h.store.PutPrior(r.Context(), userID, agg); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("prior writeback failed")
		}
	}

	h.manager.Remove(sessionID)
	logging.Ctx(r.Context()).Info().Str("session_id", sessionID).Msg("session removed")
	writeJSON(w, r, http.StatusOK, map[string]string{"session_id": sessionID, "status": "removed"})
}

// postVisible handles POST /api/v1/sessions/{sessionID}/visible. This is
// the hot path: every viewport event lands here.
func (h *Handler) postVisible(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req VisibleRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}

	result, err := sess.OnItemVisible(req.SlotIndex, time.Now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	if result.Batch != nil {
		// Persistence is best-effort; the batch is already live in the
		// session catalog and rederivable from the published event.
		if err := h.store.PutBatch(r.Context(), sess.ID(), *result.Batch); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("session_id", sess.ID()).Msg("batch persist failed")
		}
	}

	writeJSON(w, r, http.StatusOK, result)
}

// getFeed handles GET /api/v1/sessions/{sessionID}/feed?from=N&count=M.
func (h *Handler) getFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	from, err := queryInt(r, "from", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	count, err := queryInt(r, "count", 20)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	if from < 0 || count < 1 || count > 200 {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "from must be >= 0 and count in [1, 200]")
		return
	}

	sess.EnsureSlotsGenerated(from + count)
	slots := sess.Feed(from, count)
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"from":  from,
		"count": len(slots),
		"slots": slots,
	})
}

// getStats handles GET /api/v1/sessions/{sessionID}/stats.
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, sess.Stats())
}

// batchResponse is one persisted batch, optionally with rederived items.
type batchResponse struct {
	Record engine.BatchRecord `json:"record"`
	Items  []engine.Item      `json:"items,omitempty"`
}

// getBatches handles GET /api/v1/sessions/{sessionID}/batches. With
// ?derive=true each record's ten items are recomputed from its seed.
func (h *Handler) getBatches(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	records, err := h.store.BatchesOf(r.Context(), sess.ID())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("session_id", sess.ID()).Msg("batch scan failed")
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "batch history unavailable")
		return
	}

	derive := strings.EqualFold(r.URL.Query().Get("derive"), "true")
	batches := make([]batchResponse, 0, len(records))
	for _, rec := range records {
		b := batchResponse{Record: rec}
		if derive {
			b.Items = sess.DeriveBatch(rec)
		}
		batches = append(batches, b)
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID(),
		"batches":    batches,
	})
}

// healthz handles GET /healthz.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.manager.Len(),
	})
}

// session resolves the sessionID URL parameter, writing a 404 on a miss.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*engine.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, ok := h.manager.Get(sessionID, time.Now())
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return nil, false
	}
	return sess, true
}
