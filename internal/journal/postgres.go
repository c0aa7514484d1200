// Package journal keeps a history of received push events.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS push_events (
	id          BIGSERIAL PRIMARY KEY,
	event       TEXT        NOT NULL,
	booking_id  TEXT        NOT NULL DEFAULT '',
	payload     JSONB       NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS push_events_received_at_idx ON push_events (received_at DESC);
`

// PostgresJournal stores push events in the push_events table
type PostgresJournal struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresJournal creates a journal over an open lib/pq handle
func NewPostgresJournal(db *sql.DB, logger *slog.Logger) *PostgresJournal {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJournal{db: db, logger: logger}
}

// Migrate creates the table and index when missing
func (j *PostgresJournal) Migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate push_events: %w", err)
	}
	return nil
}

// Record inserts ev and fills in its id and receipt time
func (j *PostgresJournal) Record(ctx context.Context, ev *domain.PushEvent) error {
	payload := ev.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	const q = `INSERT INTO push_events (event, booking_id, payload, received_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	err := j.db.QueryRowContext(ctx, q, ev.Event, ev.BookingID, payload, ev.ReceivedAt.UTC()).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("insert push event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first
func (j *PostgresJournal) Recent(ctx context.Context, limit int) ([]*domain.PushEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, event, booking_id, payload, received_at
		FROM push_events ORDER BY received_at DESC, id DESC LIMIT $1`
	rows, err := j.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query push events: %w", err)
	}
	defer rows.Close()

	var out []*domain.PushEvent
	for rows.Next() {
		ev := &domain.PushEvent{}
		if err := rows.Scan(&ev.ID, &ev.Event, &ev.BookingID, &ev.Payload, &ev.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan push event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push events: %w", err)
	}
	return out, nil
}

var _ domain.EventJournal = (*PostgresJournal)(nil)
