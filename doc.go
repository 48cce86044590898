// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Hearthstone tracker API server.

The tracker records Hearthstone match results per deck: players keep a list
of decks, select one, and log wins and losses against opponent classes. Each
deck shows its record and win rate, and a global history lists every match.
State is kept per user in a remote store so it follows the player across
devices; guests get an in-memory session instead.

# Starting the Server

The server requires a session secret; everything else has defaults:

	SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --session-secret ...

# Configuration

Required settings:

  - SESSION_SECRET (--session-secret): HMAC key for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: tracker.db for sqlite)
  - STORE_TYPE (--store): sql, redis or memory (default: sql)
  - REDIS_URL (--redis): Redis URL for the redis store
  - MATCH_LINKAGE (--linkage): id or name (default: id)

A .env file is loaded first when present. See package cliparse for the
full list.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - tracker: Session state machine and the session manager
  - identity: Accounts, guests, bearer session tokens
  - store: Remote state store (SQL, Redis, memory)
  - handlers: HTTP request handlers (auth, session, decks, matches)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, JSON helpers, bearer token parsing
  - models: Domain, request and response types, sentinel errors
  - auth: Password hashing and token signing primitives
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
