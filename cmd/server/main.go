package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aryan0dhankhar/rentdesk/internal/app"
	"github.com/aryan0dhankhar/rentdesk/internal/domain"
	"github.com/aryan0dhankhar/rentdesk/internal/handler"
	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/rentdesk/internal/notify"
	"github.com/aryan0dhankhar/rentdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/rentdesk/internal/observability/tracing"
	"github.com/aryan0dhankhar/rentdesk/internal/realtime"
	"github.com/aryan0dhankhar/rentdesk/internal/reliability/circuitbreaker"
	"github.com/aryan0dhankhar/rentdesk/internal/security/middleware"
	"github.com/aryan0dhankhar/rentdesk/internal/security/ratelimit"
	"github.com/aryan0dhankhar/rentdesk/internal/worker"
	"github.com/aryan0dhankhar/rentdesk/pkg/config"
)

const agentRateLimit = 120

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting rentdesk agent", slog.String("environment", cfg.Environment), slog.String("api", cfg.APIURL))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, log, "rentdesk-agent", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Push journal
	journal, journalHealth, closeJournal, err := app.OpenJournal(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open journal", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeJournal()

	// 5. Client stack: API, store, session, services
	stack, err := app.New(ctx, cfg, log, notify.NewLogNotifier(log))
	if err != nil {
		log.Error("failed to initialize client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()

	stack.Breaker.OnStateChange(func(from, to circuitbreaker.State) {
		log.Warn("api circuit breaker changed state", slog.String("from", from.String()), slog.String("to", to.String()))
	})

	// 6. Restore the landlord session
	sess, err := stack.Restore(ctx)
	if err != nil {
		log.Error("agent needs a signed-in session, run `rentdesk login` first", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if sess.User.Role != domain.RoleLandlord {
		log.Error("agent requires a landlord account", slog.String("role", string(sess.User.Role)))
		os.Exit(1)
	}

	if err := stack.Bookings.FetchLandlordBookings(ctx); err != nil {
		log.Warn("initial booking fetch failed", slog.String("error", err.Error()))
	}

	// 7. Realtime subscription
	events := realtime.NewBookingEvents(stack.Store, notify.NewLogNotifier(log), journal, log)
	socket, err := stack.Socket(events)
	if err != nil {
		log.Error("failed to initialize socket", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := socket.Join(ctx, realtime.LandlordRoom(sess.User.ID)); err != nil && !errors.Is(err, realtime.ErrNotConnected) {
		log.Warn("failed to join landlord room", slog.String("error", err.Error()))
	}
	go func() {
		if err := socket.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("socket stopped", slog.String("error", err.Error()))
		}
	}()

	// 8. Resync worker
	resync := worker.NewResyncWorker(stack.Bookings, events, log, cfg.ResyncSchedule, cfg.HTTPTimeout)
	go func() {
		if err := resync.Start(ctx); err != nil {
			log.Error("resync worker failed", slog.String("error", err.Error()))
		}
	}()

	// 9. Setup HTTP routes
	health := handler.NewHealthHandler(map[string]handler.Check{
		"socket": func(context.Context) error {
			if !socket.Connected() {
				return errors.New("not connected")
			}
			return nil
		},
		"session": stack.PingSessions,
		"journal": journalHealth,
		"api": func(context.Context) error {
			if stack.Breaker.State() == circuitbreaker.StateOpen {
				return errors.New("circuit open")
			}
			return nil
		},
	}, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("GET /readyz", health.Ready)
	mux.Handle("GET /api/bookings", handler.NewBookingsHandler(stack.Store, cfg.LandlordPageSize, log))
	mux.Handle("GET /api/notifications", handler.NewNotificationsHandler(journal, log))
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := ratelimit.NewLimiter(agentRateLimit, time.Minute)
	defer rateLimiter.Stop()

	// Chain middleware: request ID -> metrics -> token -> rate limit
	rootHandler := middleware.RequestIDMiddleware(
		metrics.HTTPMetricsMiddleware(
			middleware.AgentTokenMiddleware(cfg.AgentToken, stack.Audit, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(mux),
			),
		),
	)

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.AgentPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("agent listening",
		slog.Int("port", cfg.AgentPort),
		slog.Bool("token_required", cfg.AgentToken != ""),
		slog.Int("rate_limit", agentRateLimit),
		slog.String("landlord", sess.User.ID),
	)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("agent stopped")
}
