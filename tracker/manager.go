// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/hearthstone-tracker/models"
)

// DefaultStoreTimeout bounds every remote store call
const DefaultStoreTimeout = 5 * time.Second

// IdentityProvider authenticates users. Implementations return errors
// wrapping models.ErrAuth for rejected credentials.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (models.Identity, error)
	SignUp(ctx context.Context, email, password string) (models.Identity, error)
	Guest(ctx context.Context) (models.Identity, error)
	SignOut(ctx context.Context, userID string) error
	OnAuthStateChange(fn func(userID string, signedIn bool))
}

// StateStore loads and saves a user's snapshot. A missing document is
// reported with found == false, not an error. Save replaces the document.
type StateStore interface {
	Load(ctx context.Context, userID string) (snap models.Snapshot, found bool, err error)
	Save(ctx context.Context, userID string, snap models.Snapshot) error
}

type Options struct {
	Linkage      Linkage
	StoreTimeout time.Duration
	Now          func() time.Time
}

// Manager owns one Session per active user and mirrors authenticated
// sessions to the remote store.
type Manager struct {
	idp   IdentityProvider
	store StateStore
	opts  Options

	mu        sync.Mutex
	entries   map[string]*entry
	signedOut map[string]bool // torn down; only a fresh sign-in reopens them
}

// entry locks are always taken in the order Manager.mu, entry.mu, entry.saveMu
type entry struct {
	ready chan struct{} // closed once the initial load finished

	mu      sync.Mutex
	session *Session
	loaded  bool
	loadErr error

	saveMu  sync.Mutex
	saved   uint64 // last version the store acknowledged
	syncErr error
}

func NewManager(idp IdentityProvider, store StateStore, opts Options) *Manager {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Manager{
		idp:     idp,
		store:   store,
		opts:    opts,
		entries:   make(map[string]*entry),
		signedOut: make(map[string]bool),
	}
	idp.OnAuthStateChange(func(userID string, signedIn bool) {
		if !signedIn {
			m.close(userID)
		}
	})
	return m
}

// SignIn authenticates with the identity provider and opens the session
func (m *Manager) SignIn(ctx context.Context, email, password string) (models.SessionView, error) {
	id, err := m.idp.SignIn(ctx, email, password)
	if err != nil {
		return models.SessionView{}, err
	}
	return m.openView(ctx, id)
}

// SignUp registers a new account and opens its (empty) session
func (m *Manager) SignUp(ctx context.Context, email, password string) (models.SessionView, error) {
	id, err := m.idp.SignUp(ctx, email, password)
	if err != nil {
		return models.SessionView{}, err
	}
	return m.openView(ctx, id)
}

// Guest opens an in-memory session that is never persisted
func (m *Manager) Guest(ctx context.Context) (models.SessionView, error) {
	id, err := m.idp.Guest(ctx)
	if err != nil {
		return models.SessionView{}, err
	}
	return m.openView(ctx, id)
}

// SignOut signs the user out and tears the session down. The teardown runs
// even when the provider fails.
func (m *Manager) SignOut(ctx context.Context, id models.Identity) error {
	err := m.idp.SignOut(ctx, id.UserID)
	m.close(id.UserID)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// View returns the presentation state of the user's session
func (m *Manager) View(ctx context.Context, id models.Identity) (models.SessionView, error) {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Closed() {
		return models.SessionView{}, models.ErrNoSession
	}
	return e.view(), nil
}

// Read runs fn against the session without persisting anything
func (m *Manager) Read(ctx context.Context, id models.Identity, fn func(*Session) error) error {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Closed() {
		return models.ErrNoSession
	}
	return fn(e.session)
}

// Mutate runs fn against the session and persists the result when fn changed
// persisted state. Store failures do not undo the change; they are reported
// in the returned SyncStatus. Until the remote state is loaded only screen
// and selection changes are allowed; anything else is rolled back.
func (m *Manager) Mutate(ctx context.Context, id models.Identity, fn func(*Session) error) (models.SyncStatus, error) {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return models.SyncStatus{}, err
	}

	e.mu.Lock()
	s := e.session
	if s.Closed() {
		e.mu.Unlock()
		return models.SyncStatus{}, models.ErrNoSession
	}

	var cp checkpoint
	if !e.loaded {
		cp = s.checkpoint()
	}
	before := s.Version()
	err = fn(s)
	if !e.loaded && s.Version() != before {
		s.rollback(cp)
		e.mu.Unlock()
		return models.SyncStatus{}, fmt.Errorf("%w: state was not loaded, reload before making changes", models.ErrStore)
	}
	if err != nil {
		e.mu.Unlock()
		return e.status(), err
	}
	if s.Version() == before {
		e.mu.Unlock()
		return e.status(), nil
	}
	version, snap := s.Version(), s.Snapshot()
	e.mu.Unlock()

	return m.persist(ctx, id, e, version, snap), nil
}

// Sync retries persisting the current snapshot
func (m *Manager) Sync(ctx context.Context, id models.Identity) (models.SyncStatus, error) {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return models.SyncStatus{}, err
	}

	e.mu.Lock()
	if e.session.Closed() {
		e.mu.Unlock()
		return models.SyncStatus{}, models.ErrNoSession
	}
	if !e.loaded {
		e.mu.Unlock()
		return models.SyncStatus{}, fmt.Errorf("%w: state was not loaded, reload before syncing", models.ErrStore)
	}
	version, snap := e.session.Version(), e.session.Snapshot()
	e.mu.Unlock()

	status := m.persist(ctx, id, e, version, snap)
	if status.PendingSync {
		return status, fmt.Errorf("%w: %s", models.ErrStore, status.SyncError)
	}
	return status, nil
}

// Reload re-reads the remote document. On failure the in-memory state is
// left as it was. Unsynced local changes block a reload.
func (m *Manager) Reload(ctx context.Context, id models.Identity) (models.SessionView, error) {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return models.SessionView{}, err
	}
	if id.Guest {
		return m.View(ctx, id)
	}

	e.mu.Lock()
	pending := e.loaded && e.pending()
	e.mu.Unlock()
	if pending {
		return models.SessionView{}, fmt.Errorf("%w: unsynced changes, sync before reloading", models.ErrStore)
	}

	snap, found, err := m.load(ctx, id.UserID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Closed() {
		return models.SessionView{}, models.ErrNoSession
	}
	if err != nil {
		slog.Warn("state reload failed", "user_id", id.UserID, "error", err)
		return models.SessionView{}, err
	}
	if e.loaded && e.pending() {
		return models.SessionView{}, fmt.Errorf("%w: unsynced changes, sync before reloading", models.ErrStore)
	}

	e.apply(snap)
	slog.Info("state reloaded", "user_id", id.UserID, "found", found)
	return e.view(), nil
}

func (m *Manager) openView(ctx context.Context, id models.Identity) (models.SessionView, error) {
	e, err := m.open(ctx, id, false)
	if err != nil {
		return models.SessionView{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Closed() {
		return models.SessionView{}, models.ErrNoSession
	}
	return e.view(), nil
}

// lookup returns the live entry for id, reopening authenticated sessions
// that are not in memory (for example after a restart). Sessions torn down
// by sign-out stay closed until the next sign-in.
func (m *Manager) lookup(ctx context.Context, id models.Identity) (*entry, error) {
	m.mu.Lock()
	e, ok := m.entries[id.UserID]
	m.mu.Unlock()

	if !ok {
		if id.Guest {
			return nil, models.ErrNoSession
		}
		return m.open(ctx, id, true)
	}

	select {
	case <-e.ready:
		return e, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", models.ErrStore, ctx.Err())
	}
}

// open registers a session for id and loads its state. A second open for the
// same user waits for the first load instead of loading again.
func (m *Manager) open(ctx context.Context, id models.Identity, reopen bool) (*entry, error) {
	m.mu.Lock()
	if reopen && m.signedOut[id.UserID] {
		m.mu.Unlock()
		return nil, models.ErrNoSession
	}
	delete(m.signedOut, id.UserID)
	if e, ok := m.entries[id.UserID]; ok {
		m.mu.Unlock()
		select {
		case <-e.ready:
			return e, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", models.ErrStore, ctx.Err())
		}
	}

	e := &entry{
		ready:   make(chan struct{}),
		session: NewSession(id, m.opts.Linkage, m.opts.Now),
	}
	m.entries[id.UserID] = e
	m.mu.Unlock()
	defer close(e.ready)

	if id.Guest {
		e.mu.Lock()
		e.loaded = true
		e.mu.Unlock()
		slog.Info("guest session opened", "user_id", id.UserID)
		return e, nil
	}

	snap, found, err := m.load(ctx, id.UserID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[id.UserID] != e {
		// Signed out while the load was in flight
		slog.Info("discarding late state load", "user_id", id.UserID)
		return nil, models.ErrNoSession
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.loadErr = err
		slog.Warn("session opened without remote state", "user_id", id.UserID, "error", err)
		return e, nil
	}
	e.apply(snap)
	slog.Info("session opened", "user_id", id.UserID, "found", found, "decks", len(snap.Decks))
	return e, nil
}

func (m *Manager) close(userID string) {
	m.mu.Lock()
	e, ok := m.entries[userID]
	delete(m.entries, userID)
	m.signedOut[userID] = true
	m.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.session.Close()
	e.mu.Unlock()
	slog.Info("session closed", "user_id", userID)
}

func (m *Manager) load(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.StoreTimeout)
	defer cancel()

	snap, found, err := m.store.Load(ctx, userID)
	if err != nil {
		return models.Snapshot{}, false, storeError("load", err)
	}
	return snap, found, nil
}

// persist saves snap unless a newer version has already been saved.
// Saves for one user never overlap.
func (m *Manager) persist(ctx context.Context, id models.Identity, e *entry, version uint64, snap models.Snapshot) models.SyncStatus {
	if id.Guest {
		return models.SyncStatus{}
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if version <= e.saved {
		return e.statusLocked()
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.StoreTimeout)
	defer cancel()

	if err := m.store.Save(ctx, id.UserID, snap); err != nil {
		e.syncErr = storeError("save", err)
		slog.Error("state save failed", "user_id", id.UserID, "version", version, "error", err)
		return e.statusLocked()
	}
	e.saved = version
	e.syncErr = nil
	return e.statusLocked()
}

func storeError(op string, err error) error {
	if errors.Is(err, models.ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", models.ErrStore, op, err)
}

// apply restores snap and marks it as the saved version. Caller holds e.mu.
func (e *entry) apply(snap models.Snapshot) {
	e.session.Restore(snap)
	e.loaded = true
	e.loadErr = nil

	e.saveMu.Lock()
	e.saved = e.session.Version()
	e.syncErr = nil
	e.saveMu.Unlock()
}

// pending reports unsaved changes. Caller holds e.mu.
func (e *entry) pending() bool {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return e.session.Version() > e.saved
}

// status reports sync state. Caller holds e.mu.
func (e *entry) status() models.SyncStatus {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return e.statusLocked()
}

// statusLocked compares against the saved version only; caller holds e.saveMu
func (e *entry) statusLocked() models.SyncStatus {
	st := models.SyncStatus{}
	if e.session.Identity().Guest {
		return st
	}
	if e.syncErr != nil {
		st.PendingSync = true
		st.SyncError = e.syncErr.Error()
	}
	return st
}

// view builds the presentation state. Caller holds e.mu.
func (e *entry) view() models.SessionView {
	s := e.session
	v := models.SessionView{
		Identity: s.Identity(),
		Screen:   s.Screen(),
		Decks:    s.Decks(),
		Matches:  s.Matches(),
		Loaded:   e.loaded,
	}
	if d, ok := s.SelectedDeck(); ok {
		v.SelectedDeck = &d
	}
	if e.loadErr != nil {
		v.LoadError = e.loadErr.Error()
	}
	if !s.Identity().Guest {
		v.SyncStatus = e.status()
		if e.loaded && e.pending() {
			v.PendingSync = true
		}
	}
	return v
}
