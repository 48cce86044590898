// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tracker holds the deck and match state of signed-in users.

# Sessions

A Session owns one user's decks, the global match log, the selected deck and
the current screen:

	s := tracker.NewSession(identity, tracker.LinkByID, time.Now)
	deck, ok := s.AddDeck("Aggro Shaman")     // ok == false for blank names
	s.SelectDeck(deck.ID)                      // → match-result
	s.RecordMatch("Mage", models.ResultWin)    // win rate recomputed
	s.RemoveDeck(deck.ID)                      // history stays in the log
	s.ClearHistory()

Deck ids are max existing id + 1. A deck's win rate is recomputed on every
change to its matches and is nil while it has none.

Matches are linked to decks by id. LinkByName restores the older behavior of
updating every deck whose name equals the match's deck name.

# Manager

Manager keeps one Session per user and talks to two collaborators:

  - IdentityProvider: sign in, sign up, guest, sign out, auth-state callbacks
  - StateStore: load and save a user's Snapshot

Authenticated sessions are loaded on sign-in and saved after every change:

	m := tracker.NewManager(idp, store, tracker.Options{})
	view, err := m.SignIn(ctx, email, password)
	status, err := m.Mutate(ctx, view.Identity, func(s *tracker.Session) error {
		_, err := s.RecordMatch("Mage", models.ResultWin)
		return err
	})

Saves for a user are serialized and versioned, so an older snapshot never
overwrites a newer one. A failed save keeps the change in memory and reports
PendingSync; Sync retries it. A failed load leaves the session unloaded and
read-only until Reload succeeds. A load that finishes after sign-out is
dropped. Guest sessions are never loaded or saved.
*/
package tracker
