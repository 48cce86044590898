// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Hearthstone tracker API.

# Handler Types

Each handler is a struct over the session manager and the token issuer:

  - AuthHandler: sign up, sign in, guest, sign out
  - DeckHandler: deck list, add, remove, select, per-class stats
  - MatchHandler: record a result, global history, clear history
  - SessionHandler: session view, navigation, sync, reload, class list

Handlers are created via constructor functions:

	deckHandler := handlers.NewDeckHandler(manager, provider)

# Authentication

Everything except the auth endpoints and GET /classes needs an
"Authorization: Bearer <token>" header. Tokens come back in the
AuthResponse of sign up, sign in and guest.

# Errors

Errors from the tracker, identity and store layers map onto status codes:

	models.ErrInvalidInput  → 400
	models.ErrAuth          → 401
	models.ErrNoSession     → 401
	models.ErrNotFound      → 404
	models.ErrStore         → 503

# Sync Status

Mutations answer with a SyncStatus. A failed save does not fail the
request: the change is kept in memory and pending_sync is set, and the
client retries with POST /session/sync.
*/
package handlers
