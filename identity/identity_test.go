// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/hearthstone-tracker/auth"
	"github.com/danielhkuo/hearthstone-tracker/models"
	"github.com/danielhkuo/hearthstone-tracker/testutil"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider(testutil.SetupTestDB(t), testutil.GetTestConfig())
}

type authEvent struct {
	userID   string
	signedIn bool
}

func recordEvents(p *Provider) func() []authEvent {
	var mu sync.Mutex
	var events []authEvent
	p.OnAuthStateChange(func(userID string, signedIn bool) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, authEvent{userID, signedIn})
	})
	return func() []authEvent {
		mu.Lock()
		defer mu.Unlock()
		return append([]authEvent{}, events...)
	}
}

func TestSignUp(t *testing.T) {
	p := newTestProvider(t)
	events := recordEvents(p)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "  Jaina@Example.com ", "frostbolt")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if id.Email != "jaina@example.com" {
		t.Errorf("email not normalized: %q", id.Email)
	}
	if id.UserID == "" || id.Guest {
		t.Errorf("unexpected identity %+v", id)
	}

	got := events()
	if len(got) != 1 || got[0] != (authEvent{id.UserID, true}) {
		t.Errorf("unexpected auth events %+v", got)
	}
}

func TestSignUp_Validation(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "thrall@example.com", "lightning"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing at", "thrall.example.com", "lightning"},
		{"empty email", "", "lightning"},
		{"short password", "rexxar@example.com", "12345"},
		{"duplicate", "thrall@example.com", "lightning"},
		{"duplicate different case", "THRALL@example.com", "lightning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.SignUp(ctx, tt.email, tt.password)
			if !errors.Is(err, models.ErrAuth) {
				t.Errorf("SignUp() error = %v, want ErrAuth", err)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	created, err := p.SignUp(ctx, "uther@example.com", "lightbringer")
	if err != nil {
		t.Fatal(err)
	}

	id, err := p.SignIn(ctx, "Uther@Example.com", "lightbringer")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if id.UserID != created.UserID {
		t.Errorf("SignIn() user = %s, want %s", id.UserID, created.UserID)
	}

	_, wrongPassword := p.SignIn(ctx, "uther@example.com", "ashbringer")
	_, unknownEmail := p.SignIn(ctx, "arthas@example.com", "lightbringer")
	for _, err := range []error{wrongPassword, unknownEmail} {
		if !errors.Is(err, models.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestGuest(t *testing.T) {
	p := newTestProvider(t)
	events := recordEvents(p)

	a, err := p.Guest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := p.Guest(context.Background())

	if !a.Guest || !strings.HasPrefix(a.UserID, GuestPrefix) {
		t.Errorf("unexpected guest identity %+v", a)
	}
	if a.UserID == b.UserID {
		t.Error("guest ids should be unique")
	}
	if len(events()) != 2 {
		t.Errorf("expected 2 auth events, got %d", len(events()))
	}
}

func TestIssueVerify(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	for _, want := range []models.Identity{
		{UserID: "user-1", Email: "valeera@example.com"},
		{UserID: GuestPrefix + "1", Guest: true},
	} {
		token, err := p.Issue(ctx, want)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		got, err := p.Verify(ctx, token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if got != want {
			t.Errorf("Verify() = %+v, want %+v", got, want)
		}
	}
}

func TestVerify_Rejects(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	token, err := p.Issue(ctx, models.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatal(err)
	}

	// Valid signature but no auth_session row
	claims := auth.NewSessionClaims("unknown-session", "user-1", "", false, time.Now(), time.Hour)
	orphan, _ := auth.SignSessionToken(claims, testutil.GetTestConfig().SessionSecret)

	other := NewProvider(p.db, testutil.GetTestConfig())
	other.secret = "another-secret"
	foreign, _ := other.Issue(ctx, models.Identity{UserID: "user-1"})

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", token + "x"},
		{"orphan session", orphan},
		{"foreign secret", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Verify(ctx, tt.token); !errors.Is(err, models.ErrAuth) {
				t.Errorf("Verify() error = %v, want ErrAuth", err)
			}
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	issued := time.Now()
	p.now = func() time.Time { return issued }
	token, err := p.Issue(ctx, models.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatal(err)
	}

	p.now = func() time.Time { return issued.Add(p.ttl + time.Minute) }
	if _, err := p.Verify(ctx, token); !errors.Is(err, models.ErrAuth) {
		t.Errorf("Verify() error = %v, want ErrAuth", err)
	}
}

func TestSignOut_RevokesAllSessions(t *testing.T) {
	p := newTestProvider(t)
	events := recordEvents(p)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "anduin@example.com", "prophet")
	if err != nil {
		t.Fatal(err)
	}
	phone, _ := p.Issue(ctx, id)
	laptop, _ := p.Issue(ctx, id)
	bystander, _ := p.Issue(ctx, models.Identity{UserID: "someone-else"})

	if err := p.SignOut(ctx, id.UserID); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	for _, token := range []string{phone, laptop} {
		if _, err := p.Verify(ctx, token); !errors.Is(err, models.ErrAuth) {
			t.Errorf("revoked token still verifies: %v", err)
		}
	}
	if _, err := p.Verify(ctx, bystander); err != nil {
		t.Errorf("other users must stay signed in: %v", err)
	}

	got := events()
	if last := got[len(got)-1]; last != (authEvent{id.UserID, false}) {
		t.Errorf("expected sign-out event, got %+v", last)
	}
}
