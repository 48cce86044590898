// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/hearthstone-tracker/auth"
	"github.com/danielhkuo/hearthstone-tracker/cliparse"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password SignUp accepts
const MinPasswordLength = 6

// GuestPrefix starts every guest user id
const GuestPrefix = "guest-"

// errBadCredentials is shared by unknown email and wrong password
var errBadCredentials = fmt.Errorf("%w: invalid email or password", models.ErrAuth)

// Provider authenticates against the account table and issues bearer
// session tokens backed by auth_session rows
type Provider struct {
	db     *sql.DB
	secret string
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu        sync.RWMutex
	listeners []func(userID string, signedIn bool)
}

func NewProvider(db *sql.DB, cfg cliparse.Config) *Provider {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &Provider{
		db:     db,
		secret: cfg.SessionSecret,
		ttl:    ttl,
		cost:   cfg.BcryptCost,
		now:    time.Now,
	}
}

// OnAuthStateChange registers fn to run after every sign-in, sign-up, guest
// start and sign-out. Listeners run synchronously in registration order.
func (p *Provider) OnAuthStateChange(fn func(userID string, signedIn bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Provider) notify(userID string, signedIn bool) {
	p.mu.RLock()
	listeners := append([]func(string, bool){}, p.listeners...)
	p.mu.RUnlock()

	for _, fn := range listeners {
		fn(userID, signedIn)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (models.Identity, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return models.Identity{}, fmt.Errorf("%w: a valid email is required", models.ErrAuth)
	}
	if len(password) < MinPasswordLength {
		return models.Identity{}, fmt.Errorf("%w: password must be at least %d characters", models.ErrAuth, MinPasswordLength)
	}

	exists, err := p.emailExists(ctx, email)
	if err != nil {
		return models.Identity{}, err
	}
	if exists {
		return models.Identity{}, fmt.Errorf("%w: email already registered", models.ErrAuth)
	}

	hash, err := auth.HashPassword(password, p.cost)
	if err != nil {
		return models.Identity{}, err
	}

	userID := uuid.NewString()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO account (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, email, hash, p.now().UTC())
	if err != nil {
		// Lost a race with a concurrent sign-up for the same email
		if exists, _ := p.emailExists(ctx, email); exists {
			return models.Identity{}, fmt.Errorf("%w: email already registered", models.ErrAuth)
		}
		return models.Identity{}, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("account created", "user_id", userID)
	p.notify(userID, true)
	return models.Identity{UserID: userID, Email: email}, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (models.Identity, error) {
	email = normalizeEmail(email)

	var userID, hash string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM account WHERE email = $1
	`, email).Scan(&userID, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, errBadCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := auth.CheckPassword(hash, password); err != nil {
		slog.Warn("sign-in rejected", "user_id", userID)
		return models.Identity{}, errBadCredentials
	}

	p.notify(userID, true)
	return models.Identity{UserID: userID, Email: email}, nil
}

// Guest starts an anonymous identity; nothing is written for it until a
// token is issued
func (p *Provider) Guest(ctx context.Context) (models.Identity, error) {
	id := models.Identity{UserID: GuestPrefix + uuid.NewString(), Guest: true}
	p.notify(id.UserID, true)
	return id, nil
}

// SignOut revokes every live session token of the user
func (p *Provider) SignOut(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE auth_session SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`, p.now().UTC(), userID)
	// Listeners run even if revocation failed so local state is torn down
	p.notify(userID, false)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// Issue records a new auth session for id and returns its bearer token
func (p *Provider) Issue(ctx context.Context, id models.Identity) (string, error) {
	sessionID, err := auth.GenerateID(16)
	if err != nil {
		return "", err
	}

	now := p.now().UTC()
	guest := 0
	if id.Guest {
		guest = 1
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO auth_session (id, user_id, email, guest, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sessionID, id.UserID, id.Email, guest, now, now.Add(p.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	claims := auth.NewSessionClaims(sessionID, id.UserID, id.Email, id.Guest, now, p.ttl)
	return auth.SignSessionToken(claims, p.secret)
}

// Verify checks the token signature, expiry and revocation
func (p *Provider) Verify(ctx context.Context, token string) (models.Identity, error) {
	claims, err := auth.ParseSessionToken(token, p.secret, p.now)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", models.ErrAuth, err)
	}

	var userID string
	err = p.db.QueryRowContext(ctx, `
		SELECT user_id FROM auth_session WHERE id = $1 AND revoked_at IS NULL
	`, claims.ID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, fmt.Errorf("%w: session revoked", models.ErrAuth)
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to look up session: %w", err)
	}
	if userID != claims.Subject {
		return models.Identity{}, fmt.Errorf("%w: token subject mismatch", models.ErrAuth)
	}

	return models.Identity{UserID: claims.Subject, Email: claims.Email, Guest: claims.Guest}, nil
}

func (p *Provider) emailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account WHERE email = $1`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}
