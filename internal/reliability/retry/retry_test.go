package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(5), logger.Discard(), "dial", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("expected ok after 3 calls, got %q after %d", got, calls)
	}
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(2), logger.Discard(), "dial", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	if err == nil || calls != 2 {
		t.Fatalf("expected failure after 2 calls, got err=%v calls=%d", err, calls)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	sentinel := errors.New("unauthorized")
	calls := 0
	_, err := Do(context.Background(), fastConfig(0), logger.Discard(), "dial", func(ctx context.Context) (int, error) {
		calls++
		return 0, Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) || calls != 1 {
		t.Fatalf("expected permanent error after one call, got err=%v calls=%d", err, calls)
	}
}

func TestDoHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, fastConfig(0), logger.Discard(), "dial", func(ctx context.Context) (int, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return 0, errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected error after cancel")
	}
}

func TestBackoffCapped(t *testing.T) {
	cfg := &Config{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second, BackoffMultiplier: 2}
	if d := Backoff(0, cfg); d != time.Second {
		t.Fatalf("expected 1s, got %v", d)
	}
	if d := Backoff(10, cfg); d != 4*time.Second {
		t.Fatalf("expected cap 4s, got %v", d)
	}
}
