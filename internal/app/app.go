// Package app wires the client stack shared by the CLI and the agent.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/api"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/rentdesk/internal/journal"
	"github.com/aryan0dhankhar/rentdesk/internal/notify"
	"github.com/aryan0dhankhar/rentdesk/internal/realtime"
	"github.com/aryan0dhankhar/rentdesk/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/rentdesk/internal/security"
	"github.com/aryan0dhankhar/rentdesk/internal/security/audit"
	"github.com/aryan0dhankhar/rentdesk/internal/security/ratelimit"
	"github.com/aryan0dhankhar/rentdesk/internal/service"
	"github.com/aryan0dhankhar/rentdesk/internal/session"
	"github.com/aryan0dhankhar/rentdesk/internal/store"
	"github.com/aryan0dhankhar/rentdesk/pkg/config"
	"github.com/aryan0dhankhar/rentdesk/pkg/database"
)

const (
	sessionTTL        = 30 * 24 * time.Hour
	memoryJournalSize = 500
	heartbeatInterval = 25 * time.Second
)

// App holds the wired client stack
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	API      *api.Client
	Breaker  *circuitbreaker.CircuitBreaker
	Sessions domain.SessionStore
	Audit    *audit.Logger

	Auth     *service.AuthService
	Admin    *service.AdminService
	Bookings *service.BookingService

	redis    *redis.Client
	throttle *ratelimit.Limiter
}

// New builds the stack. notifier receives booking toasts; nil logs them.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, notifier domain.Notifier) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}

	a := &App{
		Config: cfg,
		Logger: log,
		Store:  store.New(store.Options{AdminPageLimit: cfg.AdminPageLimit}),
		Audit:  audit.NewLogger(log),
		Breaker: circuitbreaker.New(
			cfg.BreakerFailureThreshold,
			cfg.BreakerSuccessThreshold,
			cfg.BreakerTimeout,
		),
	}

	client, err := api.New(api.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
		Tokens:  api.TokenFunc(a.Store.Auth.Token),
		Breaker: a.Breaker,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	a.API = client

	switch cfg.SessionBackend {
	case "redis":
		rc, err := redis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, err
		}
		a.redis = rc
		a.Sessions = session.NewRedisStore(rc, cfg.Profile, sessionTTL)
	default:
		a.Sessions = session.NewFileStore(filepath.Join(cfg.SessionDir, cfg.Profile), log)
	}

	authz := security.NewAuthorizationService(log)
	a.throttle = ratelimit.NewLimiter(1, cfg.RefreshMinInterval)

	a.Auth = service.NewAuthService(client, a.Store, a.Sessions, authz, log)
	a.Admin = service.NewAdminService(client, a.Store, a.Sessions, authz, a.Audit, log)
	a.Bookings = service.NewBookingService(client, a.Store, notifier, authz, a.throttle, log)

	return a, nil
}

// Restore loads the persisted session into the store. A missing or expired
// session is not an error for callers that can run signed out.
func (a *App) Restore(ctx context.Context) (*domain.Session, error) {
	sess, err := a.Auth.Restore(ctx)
	switch {
	case err == nil:
		a.Logger.Info("session restored", slog.String("user_id", sess.User.ID), slog.String("role", string(sess.User.Role)))
		return sess, nil
	case errors.Is(err, service.ErrNotSignedIn), errors.Is(err, service.ErrSessionExpired):
		a.Logger.Info("no active session", slog.String("reason", err.Error()))
		return nil, err
	default:
		return nil, fmt.Errorf("restore session: %w", err)
	}
}

// PingSessions checks the session backend
func (a *App) PingSessions(ctx context.Context) error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Ping(ctx)
}

// Socket builds a realtime client authenticated with the signed-in token,
// with the booking handlers registered.
func (a *App) Socket(events *realtime.BookingEvents) (*realtime.Client, error) {
	c, err := realtime.New(realtime.Config{
		URL:               a.Config.SocketURL,
		Token:             a.Store.Auth.Token,
		HeartbeatInterval: heartbeatInterval,
		Logger:            a.Logger,
	})
	if err != nil {
		return nil, err
	}
	events.Register(c)
	c.OnReconnect(a.refreshBookings)
	return c, nil
}

// refreshBookings refetches the landlord's bookings after a reconnect;
// pushes sent while the socket was down are not replayed
func (a *App) refreshBookings(ctx context.Context) {
	fetched, err := a.Bookings.Refresh(ctx)
	if err != nil {
		a.Logger.Warn("booking refresh after reconnect failed", slog.String("error", err.Error()))
		return
	}
	a.Logger.Debug("bookings refreshed after reconnect", slog.Bool("fetched", fetched))
}

// OpenJournal returns the Postgres journal when a DSN is configured and an
// in-memory one otherwise, together with its health check and closer.
func OpenJournal(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.EventJournal, func(context.Context) error, func() error, error) {
	if cfg.JournalDSN == "" {
		log.Info("journal: using in-memory buffer", slog.Int("size", memoryJournalSize))
		return journal.NewMemoryJournal(memoryJournalSize),
			func(context.Context) error { return nil },
			func() error { return nil },
			nil
	}

	pool, err := database.NewConnectionPool(ctx, database.FromDSN(cfg.JournalDSN), log)
	if err != nil {
		return nil, nil, nil, err
	}
	j := journal.NewPostgresJournal(pool.GetDB(), log)
	if err := j.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, nil, nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, pool.Health, pool.Close, nil
}

// Close releases the stack's background resources
func (a *App) Close() error {
	a.throttle.Stop()
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
