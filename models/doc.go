// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Deck: id, name, matches, derived wins/losses/win_rate
  - Match: deck name and id, opponent_class, result, date
  - Snapshot: decks + matches, the unit of remote persistence
  - Identity: user_id, email, guest
  - DeckStats / ClassStats: per-deck breakdown by opponent class
  - SessionView: screen, decks, matches, selection and sync status

A deck's win_rate is a *float64 and is omitted from JSON until the deck has
at least one match, so "no games yet" is never confused with 0%.

# Screens

	login → deck-selection → match-result
	             ↕
	       match-history

# Hero Classes and Results

HeroClasses lists the 11 opponent classes. CanonicalHeroClass and
CanonicalResult normalize user input:

	class, ok := models.CanonicalHeroClass("demon hunter") // "Demon Hunter"
	result, ok := models.CanonicalResult("lose")           // "loss"

# Errors

ErrInvalidInput, ErrNotFound, ErrAuth, ErrStore and ErrNoSession form the
error taxonomy. Wrap them with %w and test with errors.Is.
*/
package models
