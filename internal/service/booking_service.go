package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/featureflags"
	"github.com/aryan0dhankhar/rentdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/rentdesk/internal/security"
	"github.com/aryan0dhankhar/rentdesk/internal/security/ratelimit"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
)

const refreshKey = "landlord_bookings"

// BookingService runs the landlord's booking actions against the bookings container
type BookingService struct {
	api      LandlordAPI
	store    *store.Store
	notifier domain.Notifier
	guard    guard
	throttle *ratelimit.Limiter
	logger   *slog.Logger

	optimistic func() bool
}

// NewBookingService creates the landlord booking service. throttle limits
// Refresh; nil disables throttling.
func NewBookingService(
	client LandlordAPI,
	st *store.Store,
	notifier domain.Notifier,
	authz *security.AuthorizationService,
	throttle *ratelimit.Limiter,
	logger *slog.Logger,
) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	if authz == nil {
		authz = security.NewAuthorizationService(logger)
	}
	logger = logger.With(slog.String("service", "bookings"))
	return &BookingService{
		api:        client,
		store:      st,
		notifier:   notifier,
		guard:      guard{store: st, authz: authz, logger: logger},
		throttle:   throttle,
		logger:     logger,
		optimistic: func() bool { return featureflags.Enabled(featureflags.OptimisticBookings) },
	}
}

// FetchLandlordBookings replaces the cached list with the landlord's bookings
func (s *BookingService) FetchLandlordBookings(ctx context.Context) error {
	if _, err := s.guard.require(security.PermLandlordBookings); err != nil {
		return err
	}
	start := time.Now()
	s.store.Bookings.Pending()
	items, err := s.api.LandlordBookings(ctx)
	observe(s.logger, "fetch_landlord_bookings", start, err)
	if err != nil {
		f := failure("fetch_landlord_bookings", err, msgLandlordBookings)
		s.store.Bookings.Rejected(f.Message)
		return f
	}
	s.store.Bookings.ReplaceAll(items)
	metrics.SetCachedBookings(len(items))
	return nil
}

// Refresh refetches unless another refresh ran within the throttle window.
// It reports whether a fetch was made.
func (s *BookingService) Refresh(ctx context.Context) (bool, error) {
	if s.throttle != nil && !s.throttle.Allow(refreshKey) {
		s.logger.Debug("refresh throttled")
		return false, nil
	}
	return true, s.FetchLandlordBookings(ctx)
}

// ConfirmBooking accepts a pending booking request
func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.decide(ctx, id, domain.BookingConfirmed)
}

// RejectBooking declines a pending booking request
func (s *BookingService) RejectBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.decide(ctx, id, domain.BookingRejected)
}

func (s *BookingService) decide(ctx context.Context, id string, target domain.BookingStatus) (*domain.Booking, error) {
	if _, err := s.guard.require(security.PermLandlordBookings); err != nil {
		return nil, err
	}

	action, fallback, call, done := "confirm_booking", msgConfirmBooking, s.api.ConfirmBooking, "Booking confirmed"
	if target == domain.BookingRejected {
		action, fallback, call, done = "reject_booking", msgRejectBooking, s.api.RejectBooking, "Booking rejected"
	}
	logger := s.logger.With(slog.String("booking_id", id), slog.String("action", action))

	var previous domain.BookingStatus
	applied := false
	if s.optimistic() {
		previous, applied = s.store.Bookings.SetStatus(id, target)
	}

	start := time.Now()
	s.store.Bookings.Pending()
	b, err := call(ctx, id)
	observe(s.logger, action, start, err)
	if err != nil {
		f := failure(action, err, fallback)
		if applied {
			s.rollback(ctx, logger, id, previous)
		}
		s.store.Bookings.Rejected(f.Message)
		s.notify(ctx, domain.LevelError, f.Message)
		return nil, f
	}

	s.store.Bookings.Replace(*b)
	s.notify(ctx, domain.LevelSuccess, done)
	logger.Info("booking decided", slog.String("status", string(b.Status)))
	return b, nil
}

// rollback restores the server's view after a failed optimistic update by
// refetching; if that fails too the previous status is put back locally.
func (s *BookingService) rollback(ctx context.Context, logger *slog.Logger, id string, previous domain.BookingStatus) {
	items, err := s.api.LandlordBookings(ctx)
	if err == nil {
		s.store.Bookings.ReplaceAll(items)
		metrics.SetCachedBookings(len(items))
		return
	}
	logger.Warn("refetch after failed decision failed, restoring locally", slog.String("error", err.Error()))
	s.store.Bookings.SetStatus(id, previous)
}

func (s *BookingService) notify(ctx context.Context, level domain.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, domain.Notification{Level: level, Message: msg})
	}
}

// Page returns one client-side page of the cached landlord bookings
func (s *BookingService) Page(page, size int) store.PageView[domain.Booking] {
	return store.Paginate(s.store.Bookings.Snapshot().Items, page, size)
}
