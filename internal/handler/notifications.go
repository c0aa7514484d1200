package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

const maxNotifications = 200

// NotificationsHandler lists recently received push events
type NotificationsHandler struct {
	journal domain.EventJournal
	logger  *slog.Logger
}

func NewNotificationsHandler(journal domain.EventJournal, logger *slog.Logger) *NotificationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationsHandler{journal: journal, logger: logger}
}

type eventResponse struct {
	ID         int64           `json:"id"`
	Event      string          `json:"event"`
	BookingID  string          `json:"bookingId"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt string          `json:"receivedAt"`
}

// ServeHTTP handles GET /api/notifications?limit=N
func (h *NotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxNotifications)
	}

	events, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to read journal", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to read notifications")
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		payload := json.RawMessage(ev.Payload)
		if !json.Valid(payload) {
			payload = json.RawMessage("null")
		}
		out = append(out, eventResponse{
			ID:         ev.ID,
			Event:      ev.Event,
			BookingID:  ev.BookingID,
			Payload:    payload,
			ReceivedAt: ev.ReceivedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}
