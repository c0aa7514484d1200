package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/api"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/security"
	"github.com/aryan0dhankhar/rentdesk/internal/security/auth"
	"github.com/aryan0dhankhar/rentdesk/internal/session"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
)

// AuthService runs the account actions against the auth container
type AuthService struct {
	api      AuthAPI
	store    *store.Store
	sessions domain.SessionStore
	guard    guard
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	client AuthAPI,
	st *store.Store,
	sessions domain.SessionStore,
	authz *security.AuthorizationService,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	logger = logger.With(slog.String("service", "auth"))
	return &AuthService{
		api:      client,
		store:    st,
		sessions: sessions,
		guard:    guard{store: st, authz: authz, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// run wraps a request that only moves the shared loading and error flags
// (and the status flag when tracksStatus is set).
func (s *AuthService) run(ctx context.Context, action string, tracksStatus bool, fallback string, call func(ctx context.Context) error) error {
	start := time.Now()
	s.store.Auth.Pending(tracksStatus)
	err := call(ctx)
	observe(s.logger, action, start, err)
	if err != nil {
		f := failure(action, err, fallback)
		s.store.Auth.Rejected(tracksStatus, f.Message)
		return f
	}
	return nil
}

// Register creates an account. The user still has to sign in afterwards.
func (s *AuthService) Register(ctx context.Context, name, email, password string) error {
	err := s.run(ctx, "register", true, msgRegister, func(ctx context.Context) error {
		return s.api.Register(ctx, name, email, password)
	})
	if err == nil {
		s.store.Auth.Fulfilled(true)
	}
	return err
}

// Login signs in, installs the user and token, and persists the session
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	var res *api.AuthResult
	err := s.run(ctx, "login", true, msgLogin, func(ctx context.Context) error {
		var err error
		res, err = s.api.Login(ctx, email, password)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.store.Auth.SetAuth(res.User, res.Token)
	s.persist(ctx, res.User, res.Token)
	s.logger.Info("signed in",
		slog.String("user_id", res.User.ID),
		slog.String("role", string(res.User.Role)),
	)
	u := res.User.Clone()
	return &u, nil
}

// FetchProfile reloads the signed-in user's profile
func (s *AuthService) FetchProfile(ctx context.Context) (*domain.User, error) {
	if s.store.Auth.Token() == "" {
		return nil, ErrNotSignedIn
	}
	var user *domain.User
	err := s.run(ctx, "fetch_profile", true, msgFetchProfile, func(ctx context.Context) error {
		var err error
		user, err = s.api.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.store.Auth.SetUser(*user)
	s.persist(ctx, *user, s.store.Auth.Token())
	return user, nil
}

// SaveProfile uploads the new name, email and optional photo, then
// refetches the profile so the container holds the server's view.
func (s *AuthService) SaveProfile(ctx context.Context, name, email string, photo *api.File) (*domain.User, error) {
	if _, err := s.guard.require(security.PermManageProfile); err != nil {
		return nil, err
	}
	var saved *domain.User
	err := s.run(ctx, "save_profile", true, msgSaveProfile, func(ctx context.Context) error {
		var err error
		saved, err = s.api.SaveProfile(ctx, api.ProfileForm(name, email, photo))
		return err
	})
	if err != nil {
		return nil, err
	}
	s.store.Auth.SetUser(*saved)

	fresh, err := s.FetchProfile(ctx)
	if err != nil {
		// the save itself went through
		s.logger.Warn("profile refetch after save failed", slog.String("error", err.Error()))
		return saved, nil
	}
	return fresh, nil
}

// ForgotPassword asks the backend to email a reset link
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.fulfil(s.run(ctx, "forgot_password", false, msgForgotPassword, func(ctx context.Context) error {
		return s.api.ForgotPassword(ctx, email)
	}))
}

// ResetPassword sets a new password using the emailed token
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.fulfil(s.run(ctx, "reset_password", false, msgResetPassword, func(ctx context.Context) error {
		return s.api.ResetPassword(ctx, token, newPassword)
	}))
}

// VerifyEmail confirms an address with the emailed token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.fulfil(s.run(ctx, "verify_email", false, msgVerifyEmail, func(ctx context.Context) error {
		return s.api.VerifyEmail(ctx, token)
	}))
}

// ApplyForLandlord submits the landlord application with its documents
func (s *AuthService) ApplyForLandlord(ctx context.Context, form api.Form) error {
	if _, err := s.guard.require(security.PermApplyLandlord); err != nil {
		return err
	}
	return s.fulfil(s.run(ctx, "apply_landlord", false, msgApplyLandlord, func(ctx context.Context) error {
		return s.api.ApplyForLandlord(ctx, form)
	}))
}

func (s *AuthService) fulfil(err error) error {
	if err == nil {
		s.store.Auth.Fulfilled(false)
	}
	return err
}

// Logout resets the auth container and removes the persisted session
func (s *AuthService) Logout(ctx context.Context) error {
	s.store.Auth.Logout()
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Restore loads the persisted session into the store. An expired token is
// dropped and reported as ErrSessionExpired; no session is ErrNotSignedIn.
func (s *AuthService) Restore(ctx context.Context) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, ErrNotSignedIn
	}
	sess, err := s.sessions.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}

	if sess.Token == "" {
		s.drop(ctx, "empty token")
		return nil, ErrNotSignedIn
	}
	_, err = auth.CheckExpiry(sess.Token, s.now())
	switch {
	case errors.Is(err, auth.ErrExpired):
		s.drop(ctx, err.Error())
		return nil, ErrSessionExpired
	case err != nil:
		// opaque tokens carry no readable expiry; the server decides
		s.logger.Debug("token expiry unknown, keeping session", slog.String("error", err.Error()))
	}

	s.store.Auth.SetAuth(sess.User, sess.Token)
	return sess, nil
}

func (s *AuthService) drop(ctx context.Context, reason string) {
	s.logger.Info("dropping stored session", slog.String("reason", reason))
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session", slog.String("error", err.Error()))
	}
}

func (s *AuthService) ClearError() {
	s.store.Auth.ClearError()
}

func (s *AuthService) persist(ctx context.Context, user domain.User, token string) {
	persistSession(ctx, s.sessions, s.logger, user, token)
}
