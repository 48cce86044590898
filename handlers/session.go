// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/hearthstone-tracker/middleware"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/danielhkuo/hearthstone-tracker/tracker"
)

// ScreenBack is the navigate target that returns to deck selection
const ScreenBack = "back"

type SessionHandler struct {
	manager *tracker.Manager
	tokens  Tokens
}

func NewSessionHandler(manager *tracker.Manager, tokens Tokens) *SessionHandler {
	return &SessionHandler{manager: manager, tokens: tokens}
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	view, err := h.manager.View(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Navigate handles POST /session/navigate
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	var req models.NavigateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	_, err := h.manager.Mutate(r.Context(), id, func(s *tracker.Session) error {
		if req.Screen == ScreenBack {
			s.Back()
			return nil
		}
		return s.Navigate(req.Screen)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.manager.View(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// Sync handles POST /session/sync
func (h *SessionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	status, err := h.manager.Sync(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, status)
}

// Reload handles POST /session/reload
func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	view, err := h.manager.Reload(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// ListClasses handles GET /classes
func (h *SessionHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ClassListResponse{Classes: models.HeroClasses})
}
