package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/rentdesk/internal/security"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
)

func newAuthFixture() (*AuthService, *fakeAPI, *store.Store, *memSessions) {
	fake := newFakeAPI()
	st := store.New(store.Options{})
	sessions := &memSessions{}
	s := NewAuthService(fake, st, sessions, nil, logger.Discard())
	return s, fake, st, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, st, sessions := newAuthFixture()
	ctx := context.Background()

	if err := s.Register(ctx, "Alice", "alice@example.com", "Password123"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if st.Auth.Snapshot().User != nil {
		t.Fatalf("register must not sign in")
	}

	u, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	auth := st.Auth.Snapshot()
	if auth.Status != store.StatusSucceeded || auth.Token == "" || auth.User == nil {
		t.Fatalf("auth state after login: %+v", auth)
	}
	if sessions.sess == nil || sessions.sess.Token != auth.Token {
		t.Fatalf("session not persisted")
	}
}

func TestLoginFailureUsesBackendMessage(t *testing.T) {
	s, _, st, sessions := newAuthFixture()

	_, err := s.Login(context.Background(), "nobody@example.com", "x")
	var ae *ActionError
	if !errors.As(err, &ae) {
		t.Fatalf("expected ActionError, got %v", err)
	}
	if ae.Message != "Invalid credentials" {
		t.Fatalf("message = %q", ae.Message)
	}
	auth := st.Auth.Snapshot()
	if auth.Status != store.StatusFailed || auth.Error != "Invalid credentials" || auth.Loading {
		t.Fatalf("auth state after failed login: %+v", auth)
	}
	if sessions.sess != nil {
		t.Fatalf("failed login persisted a session")
	}
}

func TestFallbackMessageWhenBodyHasNone(t *testing.T) {
	s, fake, st, _ := newAuthFixture()
	fake.failWith["forgot"] = errors.New("connection refused")

	err := s.ForgotPassword(context.Background(), "a@example.com")
	if err == nil || err.Error() != msgForgotPassword {
		t.Fatalf("err = %v", err)
	}
	auth := st.Auth.Snapshot()
	if auth.Error != msgForgotPassword {
		t.Fatalf("error = %q", auth.Error)
	}
	if auth.Status != store.StatusIdle {
		t.Fatalf("non-session request moved status to %s", auth.Status)
	}
}

func TestSaveProfileRefetches(t *testing.T) {
	s, fake, st, _ := newAuthFixture()
	ctx := context.Background()
	fake.addUser(domain.User{ID: "u-1", Name: "Old", Email: "o@example.com", Role: domain.RoleTenant}, "pw")
	if _, err := s.Login(ctx, "o@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	u, err := s.SaveProfile(ctx, "New Name", "", nil)
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if u.Name != "New Name" {
		t.Fatalf("name = %q", u.Name)
	}
	if fake.count("me") != 1 {
		t.Fatalf("profile refetched %d times, want 1", fake.count("me"))
	}
	if got := st.Auth.Snapshot().User.Name; got != "New Name" {
		t.Fatalf("store name = %q", got)
	}
}

func TestSaveProfileRequiresSession(t *testing.T) {
	s, fake, _, _ := newAuthFixture()
	if _, err := s.SaveProfile(context.Background(), "x", "", nil); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	if fake.count("save_profile") != 0 {
		t.Fatal("request sent without a session")
	}
}

func TestApplyForLandlordGuardedByRole(t *testing.T) {
	s, fake, st, _ := newAuthFixture()
	st.Auth.SetAuth(domain.User{ID: "u-1", Role: domain.RoleLandlord}, "tok")

	err := s.ApplyForLandlord(context.Background(), landlordForm())
	if !errors.Is(err, security.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if fake.count("apply") != 0 {
		t.Fatal("landlord application sent for a landlord")
	}

	st.Auth.SetAuth(domain.User{ID: "u-2", Role: domain.RoleTenant}, "tok")
	if err := s.ApplyForLandlord(context.Background(), landlordForm()); err != nil {
		t.Fatalf("tenant application failed: %v", err)
	}
}

func TestRestore(t *testing.T) {
	s, _, st, sessions := newAuthFixture()
	ctx := context.Background()
	user := domain.User{ID: "u-1", Role: domain.RoleLandlord}

	if _, err := s.Restore(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}

	sessions.sess = &domain.Session{Token: testToken(user, time.Now().Add(-time.Minute)), User: user}
	if _, err := s.Restore(ctx); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if sessions.sess != nil {
		t.Fatal("expired session not cleared")
	}

	sessions.sess = &domain.Session{Token: testToken(user, time.Now().Add(time.Hour)), User: user}
	if _, err := s.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := st.Auth.Snapshot(); got.User == nil || got.User.ID != "u-1" {
		t.Fatalf("restored state = %+v", got)
	}
}

func TestRestoreKeepsOpaqueToken(t *testing.T) {
	s, _, st, sessions := newAuthFixture()
	user := domain.User{ID: "u-1", Role: domain.RoleTenant}
	sessions.sess = &domain.Session{Token: "opaque-token", User: user}

	if _, err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if sessions.sess == nil {
		t.Fatal("session with opaque token was cleared")
	}
	if got := st.Auth.Snapshot(); got.Token != "opaque-token" || got.User == nil {
		t.Fatalf("restored state = %+v", got)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s, fake, st, sessions := newAuthFixture()
	ctx := context.Background()
	fake.addUser(domain.User{ID: "u-1", Email: "a@example.com", Role: domain.RoleTenant}, "pw")
	if _, err := s.Login(ctx, "a@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.sess != nil {
		t.Fatal("session still stored")
	}
	if got := st.Auth.Snapshot(); got.User != nil || got.Token != "" || got.Status != store.StatusIdle {
		t.Fatalf("state after logout = %+v", got)
	}
}
