package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/featureflags"
	"github.com/aryan0dhankhar/rentdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
	"github.com/aryan0dhankhar/rentdesk/pkg/cache"
)

// Booking events pushed by the backend
const (
	EventNewBooking           = "newBooking"
	EventBookingStatusUpdate  = "bookingStatusUpdate"
	EventPaymentStatusUpdated = "paymentStatusUpdated"
)

// DefaultDedupeWindow suppresses repeated payment notifications for bookings
// that are not cached
const DefaultDedupeWindow = 30 * time.Second

// LandlordRoom is the room a landlord joins to receive their booking events
func LandlordRoom(userID string) string {
	return "landlord_" + userID
}

// PaymentUpdate is the paymentStatusUpdated payload
type PaymentUpdate struct {
	BookingID     string               `json:"bookingId"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
}

// BookingEvents applies booking pushes to the bookings container and
// notifies the user
type BookingEvents struct {
	store    *store.Store
	notifier domain.Notifier
	journal  domain.EventJournal
	seen     *cache.Cache[struct{}]
	window   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewBookingEvents creates the handler; journal may be nil
func NewBookingEvents(st *store.Store, notifier domain.Notifier, journal domain.EventJournal, logger *slog.Logger) *BookingEvents {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingEvents{
		store:    st,
		notifier: notifier,
		journal:  journal,
		seen:     cache.New[struct{}](),
		window:   DefaultDedupeWindow,
		logger:   logger.With(slog.String("component", "booking_events")),
		now:      time.Now,
	}
}

// Register subscribes the handler to c's booking events
func (h *BookingEvents) Register(c *Client) {
	c.On(EventNewBooking, h.HandleNewBooking)
	c.On(EventBookingStatusUpdate, h.HandleStatusUpdate)
	c.On(EventPaymentStatusUpdated, h.HandlePaymentUpdate)
}

// HandleNewBooking adds a booking request that just arrived
func (h *BookingEvents) HandleNewBooking(ctx context.Context, data json.RawMessage) {
	b, ok := h.decodeBooking(EventNewBooking, data)
	if !ok {
		return
	}
	h.record(ctx, EventNewBooking, b.ID, data)
	_, known := h.store.Bookings.Get(b.ID)
	h.store.Bookings.UpsertBooking(b)
	metrics.SetCachedBookings(h.store.Bookings.Count())
	metrics.ObservePushEvent(EventNewBooking, "applied")

	if known {
		duplicate()
		return
	}
	h.notify(ctx, domain.LevelSuccess, fmt.Sprintf("New booking for \"%s\" received!", h.title(b)))
}

// HandleStatusUpdate merges a changed booking into the cached one
func (h *BookingEvents) HandleStatusUpdate(ctx context.Context, data json.RawMessage) {
	b, ok := h.decodeBooking(EventBookingStatusUpdate, data)
	if !ok {
		return
	}
	h.record(ctx, EventBookingStatusUpdate, b.ID, data)
	cached, known := h.store.Bookings.Get(b.ID)
	h.store.Bookings.UpsertBooking(b)
	metrics.SetCachedBookings(h.store.Bookings.Count())
	metrics.ObservePushEvent(EventBookingStatusUpdate, "applied")

	status := b.Status
	if status == "" {
		status = cached.Status
	}
	if status == "" || (known && cached.Status == status) {
		duplicate()
		return
	}
	h.notify(ctx, domain.LevelSuccess, fmt.Sprintf("Booking \"%s\" is now %s", h.title(b), status))
}

// HandlePaymentUpdate changes only the payment status of the cached booking
func (h *BookingEvents) HandlePaymentUpdate(ctx context.Context, data json.RawMessage) {
	var u PaymentUpdate
	if err := json.Unmarshal(data, &u); err != nil || u.BookingID == "" || !u.PaymentStatus.Valid() {
		h.invalid(EventPaymentStatusUpdated, data, err)
		return
	}
	h.record(ctx, EventPaymentStatusUpdated, u.BookingID, data)

	before, ok := h.store.Bookings.ApplyBookingPatch(u.BookingID, domain.PaymentStatusPatch(u.PaymentStatus))
	if !ok {
		metrics.ObservePushEvent(EventPaymentStatusUpdated, "ignored")
		// nothing cached to compare against
		if !h.first(fmt.Sprintf("%s:%s:%s", EventPaymentStatusUpdated, u.BookingID, u.PaymentStatus)) {
			return
		}
	} else {
		metrics.ObservePushEvent(EventPaymentStatusUpdated, "applied")
		if before.Payment != nil && before.Payment.Status == u.PaymentStatus {
			duplicate()
			return
		}
	}
	switch u.PaymentStatus {
	case domain.PaymentSuccess:
		h.notify(ctx, domain.LevelSuccess, "Payment succeeded for booking")
	case domain.PaymentFailed:
		h.notify(ctx, domain.LevelError, "Payment failed for booking")
	}
}

func (h *BookingEvents) decodeBooking(event string, data json.RawMessage) (domain.Booking, bool) {
	var b domain.Booking
	if err := json.Unmarshal(data, &b); err != nil || b.ID == "" {
		h.invalid(event, data, err)
		return domain.Booking{}, false
	}
	if b.Status != "" && !b.Status.Valid() {
		h.invalid(event, data, fmt.Errorf("unknown booking status %q", b.Status))
		return domain.Booking{}, false
	}
	return b, true
}

func (h *BookingEvents) invalid(event string, data json.RawMessage, err error) {
	reason := "missing id or status"
	if err != nil {
		reason = err.Error()
	}
	h.logger.Warn("dropping invalid push event",
		slog.String("event", event),
		slog.Int("bytes", len(data)),
		slog.String("error", reason),
	)
	metrics.ObservePushEvent(event, "invalid")
}

// title prefers the pushed title and falls back to the cached booking's
func (h *BookingEvents) title(b domain.Booking) string {
	if b.Property.Title != "" {
		return b.Property.Title
	}
	if cached, ok := h.store.Bookings.Get(b.ID); ok {
		return cached.Property.Title
	}
	return ""
}

// first reports whether key has not been notified within the dedupe window
func (h *BookingEvents) first(key string) bool {
	if h.seen.SetIfAbsent(key, struct{}{}, h.window) {
		return true
	}
	duplicate()
	return false
}

func duplicate() {
	metrics.ObservePushEvent("notification", "duplicate")
}

func (h *BookingEvents) notify(ctx context.Context, level domain.Level, msg string) {
	if h.notifier != nil {
		h.notifier.Notify(ctx, domain.Notification{Level: level, Message: msg})
	}
}

func (h *BookingEvents) record(ctx context.Context, event, bookingID string, data json.RawMessage) {
	if h.journal == nil || !featureflags.Enabled(featureflags.PushJournal) {
		return
	}
	ev := &domain.PushEvent{
		Event:      event,
		BookingID:  bookingID,
		Payload:    append([]byte(nil), data...),
		ReceivedAt: h.now(),
	}
	if err := h.journal.Record(ctx, ev); err != nil {
		h.logger.Warn("failed to journal push event",
			slog.String("event", event),
			slog.String("booking_id", bookingID),
			slog.String("error", err.Error()),
		)
	}
}

// PruneDedupe drops expired dedupe entries; the resync worker calls it
func (h *BookingEvents) PruneDedupe() int {
	return h.seen.Prune()
}
