// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "strings"

// Screen identifies the view a session is currently on
type Screen string

// Screen constants
const (
	ScreenLogin         Screen = "login"
	ScreenDeckSelection Screen = "deck-selection"
	ScreenMatchResult   Screen = "match-result"
	ScreenMatchHistory  Screen = "match-history"
)

// Match result constants
const (
	ResultWin  = "win"
	ResultLoss = "loss"

	// Older clients sent "lose"; it is accepted on input and on load only.
	legacyResultLoss = "lose"
)

// DateLayout matches the ISO-8601 form JavaScript's toISOString produces
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// HeroClasses is the fixed set of opponent classes, in display order
var HeroClasses = []string{
	"Druid", "Hunter", "Mage", "Paladin", "Priest",
	"Rogue", "Shaman", "Warlock", "Warrior", "Demon Hunter", "Death Knight",
}

// CanonicalHeroClass returns the canonical spelling of a hero class.
// Matching ignores case and surrounding whitespace.
func CanonicalHeroClass(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range HeroClasses {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// CanonicalResult maps a result string onto ResultWin or ResultLoss
func CanonicalResult(result string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case ResultWin:
		return ResultWin, true
	case ResultLoss, legacyResultLoss:
		return ResultLoss, true
	}
	return "", false
}

// Domain types

type Deck struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Matches []Match  `json:"matches"`
	Wins    int      `json:"wins"`
	Losses  int      `json:"losses"`
	WinRate *float64 `json:"win_rate,omitempty"` // nil until the deck has a match
}

// Match is immutable once recorded. Deck is the deck name at record time.
type Match struct {
	DeckID        int    `json:"deck_id,omitempty"`
	Deck          string `json:"deck"`
	OpponentClass string `json:"opponent_class"`
	Result        string `json:"result"`
	Date          string `json:"date"`
}

// Snapshot is the unit the remote state store loads and saves
type Snapshot struct {
	Decks   []Deck  `json:"decks"`
	Matches []Match `json:"matches"`
}

type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Guest  bool   `json:"guest"`
}

type ClassStats struct {
	OpponentClass string   `json:"opponent_class"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	WinRate       *float64 `json:"win_rate,omitempty"`
}

type DeckStats struct {
	DeckID  int          `json:"deck_id"`
	Name    string       `json:"name"`
	Wins    int          `json:"wins"`
	Losses  int          `json:"losses"`
	WinRate *float64     `json:"win_rate,omitempty"`
	ByClass []ClassStats `json:"by_class"`
}

// SyncStatus reports whether the latest state reached the remote store
type SyncStatus struct {
	PendingSync bool   `json:"pending_sync"`
	SyncError   string `json:"sync_error,omitempty"`
}

// SessionView is everything the client needs to render the current screen
type SessionView struct {
	Identity     Identity `json:"identity"`
	Screen       Screen   `json:"screen"`
	Decks        []Deck   `json:"decks"`
	Matches      []Match  `json:"matches"`
	SelectedDeck *Deck    `json:"selected_deck,omitempty"`
	Loaded       bool     `json:"loaded"`
	LoadError    string   `json:"load_error,omitempty"`
	SyncStatus
}

// Request types

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddDeckRequest struct {
	Name string `json:"name"`
}

type RecordMatchRequest struct {
	OpponentClass string `json:"opponent_class"`
	Result        string `json:"result"`
}

type NavigateRequest struct {
	Screen Screen `json:"screen"`
}

// Response types

type AuthResponse struct {
	Token   string      `json:"token"`
	Session SessionView `json:"session"`
}

type DeckResponse struct {
	Deck Deck `json:"deck"`
	SyncStatus
}

type DeckListResponse struct {
	Decks []Deck `json:"decks"`
}

type MatchResponse struct {
	Match Match `json:"match"`
	SyncStatus
}

type MatchListResponse struct {
	Matches []Match `json:"matches"`
}

type ClassListResponse struct {
	Classes []string `json:"classes"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
