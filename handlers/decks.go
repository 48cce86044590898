// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/hearthstone-tracker/middleware"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/danielhkuo/hearthstone-tracker/tracker"
)

type DeckHandler struct {
	manager *tracker.Manager
	tokens  Tokens
}

func NewDeckHandler(manager *tracker.Manager, tokens Tokens) *DeckHandler {
	return &DeckHandler{manager: manager, tokens: tokens}
}

// ListDecks handles GET /decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	var decks []models.Deck
	err := h.manager.Read(r.Context(), id, func(s *tracker.Session) error {
		decks = s.Decks()
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DeckListResponse{Decks: decks})
}

// AddDeck handles POST /decks
func (h *DeckHandler) AddDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}

	var req models.AddDeckRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var deck models.Deck
	status, err := h.manager.Mutate(r.Context(), id, func(s *tracker.Session) error {
		d, added := s.AddDeck(req.Name)
		if !added {
			return fmt.Errorf("%w: deck name is required", models.ErrInvalidInput)
		}
		deck = d
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("deck added", "user_id", id.UserID, "deck_id", deck.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.DeckResponse{Deck: deck, SyncStatus: status})
}

// RemoveDeck handles DELETE /decks/{id}
func (h *DeckHandler) RemoveDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}
	deck, ok := deckID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid deck id")
		return
	}

	status, err := h.manager.Mutate(r.Context(), id, func(s *tracker.Session) error {
		if !s.RemoveDeck(deck) {
			return fmt.Errorf("%w: deck %d", models.ErrNotFound, deck)
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("deck removed", "user_id", id.UserID, "deck_id", deck)
	middleware.JSONResponse(w, http.StatusOK, status)
}

// SelectDeck handles POST /decks/{id}/select
func (h *DeckHandler) SelectDeck(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}
	deckRef, ok := deckID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid deck id")
		return
	}

	var deck models.Deck
	status, err := h.manager.Mutate(r.Context(), id, func(s *tracker.Session) error {
		d, err := s.SelectDeck(deckRef)
		deck = d
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DeckResponse{Deck: deck, SyncStatus: status})
}

// GetDeckStats handles GET /decks/{id}/stats
func (h *DeckHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	id, ok := authenticate(w, r, h.tokens)
	if !ok {
		return
	}
	deckRef, ok := deckID(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid deck id")
		return
	}

	var stats models.DeckStats
	err := h.manager.Read(r.Context(), id, func(s *tracker.Session) error {
		st, err := s.Stats(deckRef)
		stats = st
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}
