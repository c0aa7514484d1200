package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
)

func TestConnString(t *testing.T) {
	c := &Config{Host: "db", Port: 5432, User: "u", Password: "p", Database: "rentdesk", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=rentdesk sslmode=disable"
	if got := c.ConnString(); got != want {
		t.Fatalf("ConnString = %q, want %q", got, want)
	}

	c = FromDSN("postgres://u:p@db/rentdesk?sslmode=disable")
	if got := c.ConnString(); got != "postgres://u:p@db/rentdesk?sslmode=disable" {
		t.Fatalf("DSN not preferred: %q", got)
	}
}

func TestNewPoolPingsAndReportsHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.ExpectPing()
	mock.ExpectPing()
	mock.ExpectClose()

	pool, err := newPool(context.Background(), db, FromDSN("ignored"), logger.Discard())
	if err != nil {
		t.Fatalf("newPool: %v", err)
	}
	if err := pool.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
