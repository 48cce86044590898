// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/hearthstone-tracker/middleware"
	"github.com/danielhkuo/hearthstone-tracker/models"
)

// Tokens issues and verifies bearer session tokens
type Tokens interface {
	Issue(ctx context.Context, id models.Identity) (string, error)
	Verify(ctx context.Context, token string) (models.Identity, error)
}

// authenticate resolves the bearer token into an identity, writing a 401
// and returning false when it cannot
func authenticate(w http.ResponseWriter, r *http.Request, tokens Tokens) (models.Identity, bool) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Missing bearer token")
		return models.Identity{}, false
	}

	id, err := tokens.Verify(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return models.Identity{}, false
	}
	return id, true
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuth), errors.Is(err, models.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError writes err with its mapped status. Unclassified errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, status, "Internal error")
		return
	}
	if status == http.StatusServiceUnavailable {
		slog.Warn("state store unavailable", "path", r.URL.Path, "error", err)
	}
	middleware.ErrorResponse(w, status, err.Error())
}

// deckID parses the {id} path value
func deckID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(r.PathValue("id")))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
