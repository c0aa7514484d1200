package journal

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
)

func TestPostgresRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO push_events")).
		WithArgs("paymentStatusUpdated", "b-1", []byte(`{"bookingId":"b-1"}`), at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	j := NewPostgresJournal(db, logger.Discard())
	ev := &domain.PushEvent{
		Event:      "paymentStatusUpdated",
		BookingID:  "b-1",
		Payload:    []byte(`{"bookingId":"b-1"}`),
		ReceivedAt: at,
	}
	require.NoError(t, j.Record(context.Background(), ev))
	require.Equal(t, int64(7), ev.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event", "booking_id", "payload", "received_at"}).
		AddRow(int64(2), "newBooking", "b-2", []byte(`{}`), at).
		AddRow(int64(1), "bookingStatusUpdate", "b-1", []byte(`{}`), at.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, event, booking_id, payload, received_at")).
		WithArgs(10).
		WillReturnRows(rows)

	j := NewPostgresJournal(db, logger.Discard())
	got, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "newBooking", got[0].Event)
	require.Equal(t, "b-1", got[1].BookingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS push_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewPostgresJournal(db, nil).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryJournalKeepsNewestFirst(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal(2)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, j.Record(ctx, &domain.PushEvent{Event: name}))
	}

	got, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].Event)
	require.Equal(t, "b", got[1].Event)
	require.Equal(t, int64(3), got[0].ID)

	got, err = j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
