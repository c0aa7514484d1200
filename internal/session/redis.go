package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/redis"
)

// KV is the subset of the Redis client the store uses
type KV interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// RedisStore shares one session between hosts, keyed by profile name
type RedisStore struct {
	kv  KV
	key string
	ttl time.Duration
}

// NewRedisStore stores the session under rentdesk:session:<profile>.
// ttl of zero keeps the key until Clear.
func NewRedisStore(kv KV, profile string, ttl time.Duration) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{kv: kv, key: Key(profile), ttl: ttl}
}

// Key returns the Redis key of a profile's session
func Key(profile string) string {
	return "rentdesk:session:" + profile
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Session, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Token == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return s.Clear(ctx)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data, s.ttl); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
