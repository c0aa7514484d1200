package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
)

// BookingsHandler serves the cached landlord bookings, paged client-side
type BookingsHandler struct {
	store    *store.Store
	pageSize int
	logger   *slog.Logger
}

// NewBookingsHandler creates a new bookings handler
func NewBookingsHandler(st *store.Store, pageSize int, logger *slog.Logger) *BookingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = store.LandlordPageSize
	}
	return &BookingsHandler{store: st, pageSize: pageSize, logger: logger}
}

// BookingsResponse is one page of the cached list
type BookingsResponse struct {
	Data []domain.Booking `json:"data"`
	Meta BookingsMeta     `json:"meta"`
}

type BookingsMeta struct {
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
	TotalPages    int    `json:"totalPages"`
	TotalBookings int    `json:"totalBookings"`
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
	GeneratedAt   string `json:"generatedAt"`
}

// ServeHTTP handles GET /api/bookings?page=N
func (h *BookingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	snap := h.store.Bookings.Snapshot()
	view := store.Paginate(snap.Items, page, h.pageSize)
	h.logger.Debug("bookings page served", slog.Int("page", view.Page), slog.Int("items", len(view.Items)))

	writeJSON(w, http.StatusOK, BookingsResponse{
		Data: view.Items,
		Meta: BookingsMeta{
			Page:          view.Page,
			Limit:         view.PageSize,
			TotalPages:    view.TotalPages,
			TotalBookings: view.Total,
			Loading:       snap.Loading,
			Error:         snap.Error,
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		},
	})
}
