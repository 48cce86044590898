// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/hearthstone-tracker/identity"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/danielhkuo/hearthstone-tracker/store"
	"github.com/danielhkuo/hearthstone-tracker/testutil"
	"github.com/danielhkuo/hearthstone-tracker/tracker"
)

// flakyStore wraps a store and fails on demand
type flakyStore struct {
	store.Store
	failSaves atomic.Bool
	failLoads atomic.Bool
}

var errStoreDown = errors.New("connection refused")

func (f *flakyStore) Load(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	if f.failLoads.Load() {
		return models.Snapshot{}, false, errStoreDown
	}
	return f.Store.Load(ctx, userID)
}

func (f *flakyStore) Save(ctx context.Context, userID string, snap models.Snapshot) error {
	if f.failSaves.Load() {
		return errStoreDown
	}
	return f.Store.Save(ctx, userID, snap)
}

type testEnv struct {
	states   *flakyStore
	provider *identity.Provider
	manager  *tracker.Manager

	auth    *AuthHandler
	decks   *DeckHandler
	matches *MatchHandler
	session *SessionHandler
}

// newTestEnv wires handlers over SQLite-backed identity and state
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	states := &flakyStore{Store: store.NewSQLStore(db)}
	provider := identity.NewProvider(db, cfg)
	manager := tracker.NewManager(provider, states, tracker.Options{StoreTimeout: cfg.StoreTimeout})

	return &testEnv{
		states:   states,
		provider: provider,
		manager:  manager,
		auth:     NewAuthHandler(manager, provider),
		decks:    NewDeckHandler(manager, provider),
		matches:  NewMatchHandler(manager, provider),
		session:  NewSessionHandler(manager, provider),
	}
}

// newTestEnvFrom builds a second set of handlers over env's database and
// store with fresh in-memory sessions
func newTestEnvFrom(t *testing.T, env *testEnv) *testEnv {
	t.Helper()

	manager := tracker.NewManager(env.provider, env.states, tracker.Options{StoreTimeout: testutil.GetTestConfig().StoreTimeout})
	return &testEnv{
		states:   env.states,
		provider: env.provider,
		manager:  manager,
		auth:     NewAuthHandler(manager, env.provider),
		decks:    NewDeckHandler(manager, env.provider),
		matches:  NewMatchHandler(manager, env.provider),
		session:  NewSessionHandler(manager, env.provider),
	}
}

// signUp registers an account through the handler and returns its token
func (env *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()

	req := testutil.MakeRequest("POST", "/auth/signup", models.CredentialsRequest{Email: email, Password: "password1"}, nil)
	w := httptest.NewRecorder()
	env.auth.SignUp(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("sign up failed: %d - %s", w.Code, w.Body.String())
	}

	var resp models.AuthResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.Token
}

func (env *testEnv) addDeck(t *testing.T, token, name string) models.Deck {
	t.Helper()

	req := testutil.MakeRequest("POST", "/decks", models.AddDeckRequest{Name: name}, testutil.Bearer(token))
	w := httptest.NewRecorder()
	env.decks.AddDeck(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("add deck failed: %d - %s", w.Code, w.Body.String())
	}

	var resp models.DeckResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.Deck
}

func (env *testEnv) selectDeck(t *testing.T, token, id string) {
	t.Helper()

	req := testutil.MakeRequest("POST", "/decks/"+id+"/select", nil, testutil.Bearer(token))
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	env.decks.SelectDeck(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("select deck failed: %d - %s", w.Code, w.Body.String())
	}
}

func (env *testEnv) record(t *testing.T, token, class, result string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/matches",
		models.RecordMatchRequest{OpponentClass: class, Result: result}, testutil.Bearer(token))
	w := httptest.NewRecorder()
	env.matches.RecordMatch(w, req)
	return w
}

func (env *testEnv) getSession(t *testing.T, token string) models.SessionView {
	t.Helper()

	req := testutil.MakeRequest("GET", "/session", nil, testutil.Bearer(token))
	w := httptest.NewRecorder()
	env.session.GetSession(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get session failed: %d - %s", w.Code, w.Body.String())
	}

	var view models.SessionView
	testutil.AssertJSON(t, w, &view)
	return view
}
