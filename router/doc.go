// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Hearthstone tracker API.

# Route Registration

NewRouter builds the identity provider and session manager, registers all
endpoints on an http.ServeMux and wraps it in the middleware chain:

	handler, err := router.NewRouter(db, cfg, states)

# Endpoints

Public:

	GET  /health        - Liveness
	GET  /              - Banner
	GET  /classes       - Hero class list
	POST /auth/signup   - Register and open a session
	POST /auth/signin   - Sign in and open a session
	POST /auth/guest    - Continue as guest (never persisted)

Bearer token required:

	POST   /auth/signout        - Revoke tokens and tear the session down
	GET    /session             - Screen, decks, matches, selection, sync status
	POST   /session/navigate    - Change screen ("back" returns to deck selection)
	POST   /session/sync        - Retry a failed save
	POST   /session/reload      - Re-read the saved state
	GET    /decks               - List decks
	POST   /decks               - Add a deck
	DELETE /decks/{id}          - Remove a deck
	POST   /decks/{id}/select   - Select a deck
	GET    /decks/{id}/stats    - Per-class breakdown
	GET    /matches             - Match history, oldest first
	POST   /matches             - Record a result for the selected deck
	DELETE /matches             - Clear the history

# Middleware

Every request passes through chi's RequestID and Recoverer, then
github.com/go-chi/cors configured from cfg.AllowedOrigins. API routes are
also wrapped with middleware.WithLogging.
*/
package router
