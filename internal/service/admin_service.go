package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/api"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/security"
	"github.com/aryan0dhankhar/rentdesk/internal/security/audit"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
)

// AdminService runs the dashboard actions against the admin container
type AdminService struct {
	api      AdminAPI
	store    *store.Store
	sessions domain.SessionStore
	guard    guard
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewAdminService creates the admin dashboard service
func NewAdminService(
	client AdminAPI,
	st *store.Store,
	sessions domain.SessionStore,
	authz *security.AuthorizationService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	logger = logger.With(slog.String("service", "admin"))
	return &AdminService{
		api:      client,
		store:    st,
		sessions: sessions,
		guard:    guard{store: st, authz: authz, logger: logger},
		audit:    auditLog,
		logger:   logger,
	}
}

// run guards, marks the container pending, performs call and records a
// rejection. On success the caller applies the fulfilled reducer.
func (s *AdminService) run(ctx context.Context, action string, perm security.Permission, fallback string, call func(ctx context.Context) error) (domain.User, error) {
	actor, err := s.guard.require(perm)
	if err != nil {
		return domain.User{}, err
	}
	start := time.Now()
	s.store.Admin.Pending()
	err = call(ctx)
	observe(s.logger, action, start, err)
	if err != nil {
		f := failure(action, err, fallback)
		s.store.Admin.Rejected(f.Message)
		return actor, f
	}
	return actor, nil
}

func (s *AdminService) limit(current int, requested int) int {
	if requested > 0 {
		return requested
	}
	if current > 0 {
		return current
	}
	return store.DefaultPageLimit
}

func (s *AdminService) FetchUsers(ctx context.Context, page, limit int) error {
	limit = s.limit(s.store.Admin.Snapshot().Users.Limit, limit)
	var res *domain.Page[domain.User]
	_, err := s.run(ctx, "fetch_users", security.PermManageUsers, msgLoadUsers, func(ctx context.Context) error {
		var err error
		res, err = s.api.ListUsers(ctx, page, limit)
		return err
	})
	if err != nil {
		return err
	}
	s.store.Admin.ReplaceUsers(res)
	return nil
}

// ChangeUserRole updates the user's role. The returned user replaces the
// list entry; when the admin changed their own role the new token and user
// also replace the session.
func (s *AdminService) ChangeUserRole(ctx context.Context, userID string, role domain.Role) error {
	if !role.Valid() {
		return &ActionError{Action: "change_role", Message: "Invalid role: " + string(role)}
	}
	var res *api.AuthResult
	actor, err := s.run(ctx, "change_role", security.PermManageUsers, msgChangeRole, func(ctx context.Context) error {
		var err error
		res, err = s.api.ChangeUserRole(ctx, userID, role)
		return err
	})
	if err != nil {
		if actor.ID != "" {
			s.audit.LogRoleChange(ctx, actor.ID, userID, string(role), "failure", err.Error())
		}
		return err
	}

	s.store.Admin.UpdateUser(res.User)
	if res.User.ID == actor.ID && res.Token != "" {
		s.store.Auth.SetAuth(res.User, res.Token)
		persistSession(ctx, s.sessions, s.logger, res.User, res.Token)
	}
	s.audit.LogRoleChange(ctx, actor.ID, userID, string(role), "success", "")
	return nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.delete(ctx, "user", id, security.PermManageUsers, msgDeleteUser, s.api.DeleteUser, s.store.Admin.RemoveUser)
}

func (s *AdminService) FetchProperties(ctx context.Context, page, limit int) error {
	limit = s.limit(s.store.Admin.Snapshot().Properties.Limit, limit)
	var res *domain.Page[domain.Property]
	_, err := s.run(ctx, "fetch_properties", security.PermManageListings, msgLoadProperties, func(ctx context.Context) error {
		var err error
		res, err = s.api.ListProperties(ctx, page, limit)
		return err
	})
	if err != nil {
		return err
	}
	s.store.Admin.ReplaceProperties(res)
	return nil
}

func (s *AdminService) DeleteProperty(ctx context.Context, id string) error {
	return s.delete(ctx, "property", id, security.PermManageListings, msgDeleteProperty, s.api.DeleteProperty, s.store.Admin.RemoveProperty)
}

func (s *AdminService) FetchBookings(ctx context.Context, page, limit int) error {
	limit = s.limit(s.store.Admin.Snapshot().Bookings.Limit, limit)
	var res *domain.Page[domain.Booking]
	_, err := s.run(ctx, "fetch_bookings", security.PermManageBookings, msgLoadBookings, func(ctx context.Context) error {
		var err error
		res, err = s.api.ListBookings(ctx, page, limit)
		return err
	})
	if err != nil {
		return err
	}
	s.store.Admin.ReplaceBookings(res)
	return nil
}

// UpdateBookingStatus sets a booking's status and replaces the list entry with the server's record
func (s *AdminService) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	var b *domain.Booking
	actor, err := s.run(ctx, "update_booking_status", security.PermManageBookings, msgUpdateBooking, func(ctx context.Context) error {
		var err error
		b, err = s.api.UpdateBookingStatus(ctx, id, status)
		return err
	})
	if err != nil {
		if actor.ID != "" {
			s.audit.LogBookingStatus(ctx, actor.ID, id, string(status), "failure", err.Error())
		}
		return err
	}
	s.store.Admin.UpdateBooking(*b)
	s.audit.LogBookingStatus(ctx, actor.ID, id, string(status), "success", "")
	return nil
}

func (s *AdminService) FetchReviews(ctx context.Context, page, limit int) error {
	limit = s.limit(s.store.Admin.Snapshot().Reviews.Limit, limit)
	var res *domain.Page[domain.Review]
	_, err := s.run(ctx, "fetch_reviews", security.PermModerateReviews, msgLoadReviews, func(ctx context.Context) error {
		var err error
		res, err = s.api.ListReviews(ctx, page, limit)
		return err
	})
	if err != nil {
		return err
	}
	s.store.Admin.ReplaceReviews(res)
	return nil
}

func (s *AdminService) DeleteReview(ctx context.Context, id string) error {
	return s.delete(ctx, "review", id, security.PermModerateReviews, msgDeleteReview, s.api.DeleteReview, s.store.Admin.RemoveReview)
}

func (s *AdminService) FetchMetrics(ctx context.Context) error {
	var m *domain.Metrics
	_, err := s.run(ctx, "fetch_metrics", security.PermViewMetrics, msgLoadMetrics, func(ctx context.Context) error {
		var err error
		m, err = s.api.Metrics(ctx)
		return err
	})
	if err != nil {
		return err
	}
	s.store.Admin.SetMetrics(*m)
	return nil
}

func (s *AdminService) ClearError() {
	s.store.Admin.ClearError()
}

func (s *AdminService) delete(
	ctx context.Context,
	resource, id string,
	perm security.Permission,
	fallback string,
	call func(ctx context.Context, id string) error,
	remove func(id string),
) error {
	actor, err := s.run(ctx, "delete_"+resource, perm, fallback, func(ctx context.Context) error {
		return call(ctx, id)
	})
	if err != nil {
		if actor.ID != "" {
			s.audit.LogDeletion(ctx, actor.ID, resource, id, "failure", err.Error())
		}
		return err
	}
	remove(id)
	s.audit.LogDeletion(ctx, actor.ID, resource, id, "success", "")
	return nil
}
