package audit

import (
	"context"
	"log/slog"
	"time"
)

type requestIDKey struct{}

// WithRequestID tags ctx so audit records can be correlated with API calls
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With(slog.String("component", "audit"))}
}

func (al *Logger) LogAction(ctx context.Context, actorID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("actor_id", actorID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogDeletion(ctx context.Context, actorID, resource, resourceID, status, details string) {
	al.LogAction(ctx, actorID, "delete", resource, resourceID, status, details)
}

func (al *Logger) LogRoleChange(ctx context.Context, actorID, userID, role, status, details string) {
	al.LogAction(ctx, actorID, "change_role", "user", userID, status, "role="+role+" "+details)
}

func (al *Logger) LogBookingStatus(ctx context.Context, actorID, bookingID, bookingStatus, status, details string) {
	al.LogAction(ctx, actorID, "booking_status", "booking", bookingID, status, "status="+bookingStatus+" "+details)
}

func (al *Logger) LogDenied(ctx context.Context, actorID, reason string) {
	al.LogAction(ctx, actorID, "access_denied", "api", "", "denied", reason)
}
