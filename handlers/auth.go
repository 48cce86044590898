// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/hearthstone-tracker/middleware"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/danielhkuo/hearthstone-tracker/tracker"
)

type AuthHandler struct {
	manager *tracker.Manager
	tokens  Tokens
}

func NewAuthHandler(manager *tracker.Manager, tokens Tokens) *AuthHandler {
	return &AuthHandler{manager: manager, tokens: tokens}
}

// SignUp handles POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.manager.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, view)
}

// SignIn handles POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	view, err := h.manager.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, view)
}

// Guest handles POST /auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	view, err := h.manager.Guest(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, view)
}

// SignOut handles POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	if err := h.manager.SignOut(r.Context(), id); err != nil {
		// Local teardown already happened; only revocation failed
		slog.Error("sign-out failed", "user_id", id.UserID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to revoke session")
		return
	}

	slog.Info("signed out", "user_id", id.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, view models.SessionView) {
	token, err := h.tokens.Issue(r.Context(), view.Identity)
	if err != nil {
		slog.Error("failed to issue session token", "user_id", view.Identity.UserID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("session started", "user_id", view.Identity.UserID, "guest", view.Identity.Guest, "loaded", view.Loaded)
	middleware.JSONResponse(w, status, models.AuthResponse{
		Token:   token,
		Session: view,
	})
}
