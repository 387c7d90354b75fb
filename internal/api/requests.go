// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// validate is shared across handlers; Validate is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateSessionRequest starts a new engagement session. SessionID is
// optional; when absent the server assigns a UUID. UserID ties the session
// to stored prior aggregates.
type CreateSessionRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,min=1,max=128"`
	UserID    string `json:"user_id" validate:"omitempty,min=1,max=128"`
}

// VisibleRequest reports that a feed slot became visible in the viewport.
type VisibleRequest struct {
	SlotIndex int `json:"slot_index" validate:"gte=0,lte=1000000"`
}

// decodeRequest decodes and validates a JSON request body.
func decodeRequest(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("validate body: %w", err)
	}
	return nil
}

// queryInt reads an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer", name)
	}
	return v, nil
}
