// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store implements the remote state store: one snapshot document
(decks and matches) per user.

# Implementations

  - SQLStore: the user_state table, decks and matches as JSON text, upserted
  - RedisStore: hash tracker:state:<user_id> with decks, matches and
    updated_at fields, written with HSET so other fields survive
  - Memory: in-process map for offline mode and tests

Open picks one from the config:

	states, err := store.Open(ctx, cfg, conn)
	defer states.Close()

# Semantics

Load returns found == false for a user with no document. Save overwrites
the whole snapshot. Stores never retry; callers bound every call with a
context deadline and decide what to do on failure.
*/
package store
