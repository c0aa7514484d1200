package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/api"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/rentdesk/internal/security"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
)

// AuthAPI is the part of the REST client used by AuthService
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ApplyForLandlord(ctx context.Context, form api.Form) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	SaveProfile(ctx context.Context, form api.Form) (*domain.User, error)
}

// AdminAPI is the part of the REST client used by AdminService
type AdminAPI interface {
	ListUsers(ctx context.Context, page, limit int) (*domain.Page[domain.User], error)
	ListProperties(ctx context.Context, page, limit int) (*domain.Page[domain.Property], error)
	ListBookings(ctx context.Context, page, limit int) (*domain.Page[domain.Booking], error)
	ListReviews(ctx context.Context, page, limit int) (*domain.Page[domain.Review], error)
	ChangeUserRole(ctx context.Context, userID string, role domain.Role) (*api.AuthResult, error)
	DeleteUser(ctx context.Context, id string) error
	DeleteProperty(ctx context.Context, id string) error
	DeleteReview(ctx context.Context, id string) error
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	Metrics(ctx context.Context) (*domain.Metrics, error)
}

// LandlordAPI is the part of the REST client used by BookingService
type LandlordAPI interface {
	LandlordBookings(ctx context.Context) ([]domain.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error)
	RejectBooking(ctx context.Context, id string) (*domain.Booking, error)
}

var (
	_ AuthAPI     = (*api.Client)(nil)
	_ AdminAPI    = (*api.Client)(nil)
	_ LandlordAPI = (*api.Client)(nil)
)

// ErrNotSignedIn is returned by actions that need a session when there is none
var ErrNotSignedIn = errors.New("not signed in")

// ErrSessionExpired is returned by Restore when the stored token has expired
var ErrSessionExpired = errors.New("session expired")

// guard checks the signed-in user's role before an action touches any state
type guard struct {
	store  *store.Store
	authz  *security.AuthorizationService
	logger *slog.Logger
}

func (g guard) require(perm security.Permission) (domain.User, error) {
	st := g.store.Auth.Snapshot()
	if st.User == nil || st.Token == "" {
		return domain.User{}, ErrNotSignedIn
	}
	if err := g.authz.ValidatePermission(st.User.Role, perm); err != nil {
		return domain.User{}, err
	}
	return *st.User, nil
}

// observe records the outcome of an action and logs failures
func observe(logger *slog.Logger, action string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
		logger.Warn("action failed",
			slog.String("action", action),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
	}
	metrics.ObserveAction(action, result)
}

// persistSession saves the session; a failure only costs the next run a login
func persistSession(ctx context.Context, sessions domain.SessionStore, logger *slog.Logger, user domain.User, token string) {
	if sessions == nil || token == "" {
		return
	}
	if err := sessions.Save(ctx, &domain.Session{Token: token, User: user}); err != nil {
		logger.Warn("failed to persist session", slog.String("error", err.Error()))
	}
}
