// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/danielhkuo/hearthstone-tracker/middleware"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/danielhkuo/hearthstone-tracker/tracker"
)

type MatchHandler struct {
	manager *tracker.Manager
	tokens  Tokens
}

func NewMatchHandler(manager *tracker.Manager, tokens Tokens) *MatchHandler {
	return &MatchHandler{manager: manager, tokens: tokens}
}

// ListMatches handles GET /matches. The log is oldest first; ?order=desc
// returns the newest match first.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	order := r.URL.Query().Get("order")
	if order != "" && order != "asc" && order != "desc" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	var matches []models.Match
	err := h.manager.Read(r.Context(), id, func(s *tracker.Session) error {
		matches = s.Matches()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if order == "desc" {
		slices.Reverse(matches)
	}

	middleware.JSONResponse(w, http.StatusOK, models.MatchListResponse{Matches: matches})
}

// RecordMatch handles POST /matches
func (h *MatchHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	var req models.RecordMatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var match models.Match
	status, err := h.manager.Mutate(r.Context(), id, func(s *tracker.Session) error {
		m, err := s.RecordMatch(req.OpponentClass, req.Result)
		match = m
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("match recorded",
		"user_id", id.UserID,
		"deck_id", match.DeckID,
		"opponent_class", match.OpponentClass,
		"result", match.Result,
		"pending_sync", status.PendingSync,
	)
	middleware.JSONResponse(w, http.StatusCreated, models.MatchResponse{Match: match, SyncStatus: status})
}

// ClearHistory handles DELETE /matches
func (h *MatchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	status, err := h.manager.Mutate(r.Context(), id, func(s *tracker.Session) error {
		s.ClearHistory()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("match history cleared", "user_id", id.UserID)
	middleware.JSONResponse(w, http.StatusOK, status)
}
