// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/danielhkuo/hearthstone-tracker/cliparse"
	"github.com/danielhkuo/hearthstone-tracker/handlers"
	"github.com/danielhkuo/hearthstone-tracker/identity"
	"github.com/danielhkuo/hearthstone-tracker/middleware"
	"github.com/danielhkuo/hearthstone-tracker/tracker"
)

// NewRouter wires the identity provider, session manager and handlers over
// db and states, and returns the full middleware chain
func NewRouter(db *sql.DB, cfg cliparse.Config, states tracker.StateStore) (http.Handler, error) {
	linkage, err := tracker.ParseLinkage(cfg.MatchLinkage)
	if err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	provider := identity.NewProvider(db, cfg)
	manager := tracker.NewManager(provider, states, tracker.Options{
		Linkage:      linkage,
		StoreTimeout: cfg.StoreTimeout,
	})

	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(manager, provider)
	sessionHandler := handlers.NewSessionHandler(manager, provider)
	deckHandler := handlers.NewDeckHandler(manager, provider)
	matchHandler := handlers.NewMatchHandler(manager, provider)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Reference data (public)
	mux.HandleFunc("GET /classes", middleware.WithLogging(sessionHandler.ListClasses))

	// Authentication (public)
	mux.HandleFunc("POST /auth/signup", middleware.WithLogging(authHandler.SignUp))
	mux.HandleFunc("POST /auth/signin", middleware.WithLogging(authHandler.SignIn))
	mux.HandleFunc("POST /auth/guest", middleware.WithLogging(authHandler.Guest))
	mux.HandleFunc("POST /auth/signout", middleware.WithLogging(authHandler.SignOut))

	// Session state (bearer token)
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /session/navigate", middleware.WithLogging(sessionHandler.Navigate))
	mux.HandleFunc("POST /session/sync", middleware.WithLogging(sessionHandler.Sync))
	mux.HandleFunc("POST /session/reload", middleware.WithLogging(sessionHandler.Reload))

	// Decks
	mux.HandleFunc("GET /decks", middleware.WithLogging(deckHandler.ListDecks))
	mux.HandleFunc("POST /decks", middleware.WithLogging(deckHandler.AddDeck))
	mux.HandleFunc("DELETE /decks/{id}", middleware.WithLogging(deckHandler.RemoveDeck))
	mux.HandleFunc("POST /decks/{id}/select", middleware.WithLogging(deckHandler.SelectDeck))
	mux.HandleFunc("GET /decks/{id}/stats", middleware.WithLogging(deckHandler.GetDeckStats))

	// Matches
	mux.HandleFunc("GET /matches", middleware.WithLogging(matchHandler.ListMatches))
	mux.HandleFunc("POST /matches", middleware.WithLogging(matchHandler.RecordMatch))
	mux.HandleFunc("DELETE /matches", middleware.WithLogging(matchHandler.ClearHistory))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hearthstone-tracker API v1"))
	})

	// Outermost first: request id, panic recovery, CORS
	var handler http.Handler = mux
	handler = cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})(handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RequestID(handler)

	return handler, nil
}
