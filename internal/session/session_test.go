package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/redis"
)

func sample() *domain.Session {
	return &domain.Session{
		Token: "tok-1",
		User:  domain.User{ID: "u-1", Name: "Lena", Email: "lena@example.com", Role: domain.RoleLandlord},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir, logger.Discard())

	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession on empty dir, got %v", err)
	}

	if err := s.Save(ctx, sample()); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %o, want 600", perm)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Token != "tok-1" || got.User.Role != domain.RoleLandlord {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestFileStoreIgnoresCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, logger.Discard())
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (m *memKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl[key] = ttl
	return nil
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, redis.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestRedisStoreUsesProfileKey(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := NewRedisStore(kv, "work", time.Hour)

	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := s.Save(ctx, sample()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := kv.data["rentdesk:session:work"]; !ok {
		t.Fatalf("session not stored under profile key: %v", kv.data)
	}
	if kv.ttl["rentdesk:session:work"] != time.Hour {
		t.Fatalf("ttl not applied")
	}

	got, err := s.Load(ctx)
	if err != nil || got.User.ID != "u-1" {
		t.Fatalf("load = %+v, %v", got, err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestRedisStoreDefaultProfile(t *testing.T) {
	s := NewRedisStore(newMemKV(), "", 0)
	if s.key != "rentdesk:session:default" {
		t.Fatalf("key = %s", s.key)
	}
}
