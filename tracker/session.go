// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tracker

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/hearthstone-tracker/models"
)

// Linkage decides which decks a recorded match is attributed to
type Linkage int

const (
	// LinkByID attributes a match to the selected deck only
	LinkByID Linkage = iota
	// LinkByName attributes a match to every deck whose name equals match.Deck
	LinkByName
)

// ParseLinkage maps a config value ("id" or "name") onto a Linkage
func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return LinkByID, nil
	case "name":
		return LinkByName, nil
	}
	return LinkByID, fmt.Errorf("unknown match linkage %q (want id or name)", s)
}

// Session is the deck and match state of one signed-in (or guest) user.
// It is not safe for concurrent use; Manager serializes access.
type Session struct {
	identity models.Identity
	linkage  Linkage
	now      func() time.Time

	decks    []models.Deck
	matches  []models.Match
	selected int // deck id, 0 when nothing is selected
	screen   models.Screen

	// version increases on every change that must reach the remote store
	version uint64
	closed  bool
}

// NewSession creates the session for a freshly authenticated user.
// Authentication moves the client from login to deck selection.
func NewSession(identity models.Identity, linkage Linkage, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		identity: identity,
		linkage:  linkage,
		now:      now,
		decks:    []models.Deck{},
		matches:  []models.Match{},
		screen:   models.ScreenDeckSelection,
	}
}

func (s *Session) Identity() models.Identity { return s.identity }
func (s *Session) Screen() models.Screen     { return s.screen }
func (s *Session) Version() uint64           { return s.version }
func (s *Session) Closed() bool              { return s.closed }

// Decks returns a deep copy of the decks
func (s *Session) Decks() []models.Deck {
	return copyDecks(s.decks)
}

// Matches returns a copy of the global match log, oldest first
func (s *Session) Matches() []models.Match {
	return append([]models.Match{}, s.matches...)
}

// SelectedDeck returns the selected deck, if any
func (s *Session) SelectedDeck() (models.Deck, bool) {
	if s.selected == 0 {
		return models.Deck{}, false
	}
	i := s.indexOf(s.selected)
	if i < 0 {
		return models.Deck{}, false
	}
	return copyDeck(s.decks[i]), true
}

// Snapshot returns a deep copy of the persisted state
func (s *Session) Snapshot() models.Snapshot {
	return models.Snapshot{
		Decks:   s.Decks(),
		Matches: s.Matches(),
	}
}

// AddDeck appends a new deck. An empty (after trimming) name is ignored and
// reported through the bool.
func (s *Session) AddDeck(name string) (models.Deck, bool) {
	name = strings.TrimSpace(name)
	if name == "" || s.closed {
		return models.Deck{}, false
	}

	deck := models.Deck{
		ID:      s.nextID(),
		Name:    name,
		Matches: []models.Match{},
	}
	s.decks = append(s.decks, deck)
	s.version++

	return copyDeck(deck), true
}

// RemoveDeck deletes the deck with the given id. Unknown ids are a no-op.
// Past matches stay in the global log.
func (s *Session) RemoveDeck(id int) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.decks = append(s.decks[:i], s.decks[i+1:]...)
	s.version++

	if s.selected == id {
		s.selected = 0
		s.screen = models.ScreenDeckSelection
	}
	return true
}

// SelectDeck selects a deck and moves to the match-result screen
func (s *Session) SelectDeck(id int) (models.Deck, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Deck{}, fmt.Errorf("%w: deck %d", models.ErrNotFound, id)
	}

	s.selected = id
	s.screen = models.ScreenMatchResult
	return copyDeck(s.decks[i]), nil
}

// RecordMatch records a result for the selected deck. The screen stays on
// match-result so several matches can be logged in a row.
func (s *Session) RecordMatch(opponentClass, result string) (models.Match, error) {
	deck, ok := s.SelectedDeck()
	if !ok {
		return models.Match{}, fmt.Errorf("%w: no deck selected", models.ErrInvalidInput)
	}

	if strings.TrimSpace(opponentClass) == "" {
		return models.Match{}, fmt.Errorf("%w: opponent class is required", models.ErrInvalidInput)
	}
	class, ok := models.CanonicalHeroClass(opponentClass)
	if !ok {
		return models.Match{}, fmt.Errorf("%w: unknown opponent class %q", models.ErrInvalidInput, opponentClass)
	}

	if strings.TrimSpace(result) == "" {
		return models.Match{}, fmt.Errorf("%w: result is required", models.ErrInvalidInput)
	}
	res, ok := models.CanonicalResult(result)
	if !ok {
		return models.Match{}, fmt.Errorf("%w: result must be win or loss", models.ErrInvalidInput)
	}

	match := models.Match{
		DeckID:        deck.ID,
		Deck:          deck.Name,
		OpponentClass: class,
		Result:        res,
		Date:          s.now().UTC().Format(models.DateLayout),
	}

	s.matches = append(s.matches, match)
	for i := range s.decks {
		if s.linked(s.decks[i], match) {
			s.decks[i].Matches = append(s.decks[i].Matches, match)
			recompute(&s.decks[i])
		}
	}
	s.version++

	return match, nil
}

// ClearHistory empties the global log and every deck's matches
func (s *Session) ClearHistory() {
	s.matches = []models.Match{}
	for i := range s.decks {
		s.decks[i].Matches = []models.Match{}
		recompute(&s.decks[i])
	}
	s.version++
}

// Navigate moves to another screen. Login is only reachable by signing out,
// and match-result needs a selected deck.
func (s *Session) Navigate(screen models.Screen) error {
	switch screen {
	case models.ScreenDeckSelection, models.ScreenMatchHistory:
		s.screen = screen
		return nil
	case models.ScreenMatchResult:
		if _, ok := s.SelectedDeck(); !ok {
			return fmt.Errorf("%w: select a deck first", models.ErrInvalidInput)
		}
		s.screen = screen
		return nil
	case models.ScreenLogin:
		return fmt.Errorf("%w: sign out to return to login", models.ErrInvalidInput)
	}
	return fmt.Errorf("%w: unknown screen %q", models.ErrInvalidInput, screen)
}

// Back returns to deck selection
func (s *Session) Back() {
	s.screen = models.ScreenDeckSelection
}

// Stats breaks a deck's matches down by opponent class, in HeroClasses order
func (s *Session) Stats(id int) (models.DeckStats, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.DeckStats{}, fmt.Errorf("%w: deck %d", models.ErrNotFound, id)
	}
	deck := s.decks[i]

	byClass := make(map[string]*models.ClassStats)
	for _, m := range deck.Matches {
		cs, ok := byClass[m.OpponentClass]
		if !ok {
			cs = &models.ClassStats{OpponentClass: m.OpponentClass}
			byClass[m.OpponentClass] = cs
		}
		if m.Result == models.ResultWin {
			cs.Wins++
		} else {
			cs.Losses++
		}
	}

	stats := models.DeckStats{
		DeckID:  deck.ID,
		Name:    deck.Name,
		Wins:    deck.Wins,
		Losses:  deck.Losses,
		WinRate: deck.WinRate,
		ByClass: []models.ClassStats{},
	}
	for _, class := range models.HeroClasses {
		cs, ok := byClass[class]
		if !ok {
			continue
		}
		cs.WinRate = rate(cs.Wins, cs.Wins+cs.Losses)
		stats.ByClass = append(stats.ByClass, *cs)
	}
	return stats, nil
}

// Restore replaces the state with a loaded snapshot. Derived fields are
// recomputed, ids are made unique and positive, and results are normalized.
// Matches whose result is neither a win nor a loss are dropped.
func (s *Session) Restore(snap models.Snapshot) {
	decks := make([]models.Deck, 0, len(snap.Decks))
	seen := make(map[int]bool, len(snap.Decks))
	maxID := 0
	for _, d := range snap.Decks {
		if d.ID > maxID {
			maxID = d.ID
		}
	}

	for _, d := range snap.Decks {
		d = copyDeck(d)
		if d.ID < 1 || seen[d.ID] {
			maxID++
			d.ID = maxID
		}
		seen[d.ID] = true
		d.Matches = s.normalizeMatches(d.Matches)
		recompute(&d)
		decks = append(decks, d)
	}

	s.decks = decks
	s.matches = s.normalizeMatches(snap.Matches)
	if s.indexOf(s.selected) < 0 {
		s.selected = 0
		if s.screen == models.ScreenMatchResult {
			s.screen = models.ScreenDeckSelection
		}
	}
	s.version++
}

// Close tears the session down to the login screen
func (s *Session) Close() {
	s.decks = []models.Deck{}
	s.matches = []models.Match{}
	s.selected = 0
	s.screen = models.ScreenLogin
	s.closed = true
}

// checkpoint captures everything a mutation can touch
type checkpoint struct {
	decks    []models.Deck
	matches  []models.Match
	selected int
	screen   models.Screen
	version  uint64
}

func (s *Session) checkpoint() checkpoint {
	return checkpoint{
		decks:    s.Decks(),
		matches:  s.Matches(),
		selected: s.selected,
		screen:   s.screen,
		version:  s.version,
	}
}

func (s *Session) rollback(c checkpoint) {
	s.decks = c.decks
	s.matches = c.matches
	s.selected = c.selected
	s.screen = c.screen
	s.version = c.version
}

func (s *Session) linked(deck models.Deck, match models.Match) bool {
	if s.linkage == LinkByName {
		return deck.Name == match.Deck
	}
	return deck.ID == match.DeckID
}

func (s *Session) indexOf(id int) int {
	for i, d := range s.decks {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// nextID is max existing id + 1, so ids are never reused while a higher one exists
func (s *Session) nextID() int {
	maxID := 0
	for _, d := range s.decks {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	return maxID + 1
}

func recompute(d *models.Deck) {
	d.Wins, d.Losses = 0, 0
	for _, m := range d.Matches {
		if m.Result == models.ResultWin {
			d.Wins++
		} else {
			d.Losses++
		}
	}
	d.WinRate = rate(d.Wins, len(d.Matches))
}

func rate(wins, total int) *float64 {
	if total == 0 {
		return nil
	}
	r := float64(wins) / float64(total)
	return &r
}

func (s *Session) normalizeMatches(in []models.Match) []models.Match {
	out := make([]models.Match, 0, len(in))
	for _, m := range in {
		res, ok := models.CanonicalResult(m.Result)
		if !ok {
			slog.Warn("dropping stored match with unknown result",
				"user_id", s.identity.UserID,
				"deck", m.Deck,
				"result", m.Result,
			)
			continue
		}
		m.Result = res
		out = append(out, m)
	}
	return out
}

func copyDeck(d models.Deck) models.Deck {
	d.Matches = append([]models.Match{}, d.Matches...)
	if d.WinRate != nil {
		r := *d.WinRate
		d.WinRate = &r
	}
	return d
}

func copyDecks(decks []models.Deck) []models.Deck {
	out := make([]models.Deck, len(decks))
	for i, d := range decks {
		out[i] = copyDeck(d)
	}
	return out
}
