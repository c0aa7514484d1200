package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Syncer refetches the landlord's bookings
type Syncer interface {
	FetchLandlordBookings(ctx context.Context) error
}

// Pruner drops expired dedupe entries
type Pruner interface {
	PruneDedupe() int
}

// ResyncWorker periodically refetches the landlord's bookings so a push
// that raced an in-flight fetch is reconciled with the server's view.
type ResyncWorker struct {
	syncer   Syncer
	pruner   Pruner
	logger   *slog.Logger
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr error
}

// NewResyncWorker creates a worker for a cron spec such as "@every 5m" or
// "*/10 * * * *". pruner may be nil.
func NewResyncWorker(syncer Syncer, pruner Pruner, logger *slog.Logger, schedule string, timeout time.Duration) *ResyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ResyncWorker{
		syncer:   syncer,
		pruner:   pruner,
		logger:   logger.With(slog.String("component", "resync_worker")),
		schedule: schedule,
		timeout:  timeout,
	}
}

// Start schedules the job and blocks until ctx is done
func (w *ResyncWorker) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid resync schedule %q: %w", w.schedule, err)
	}
	c.Start()
	w.logger.Info("resync worker started", slog.String("schedule", w.schedule))

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	w.logger.Info("resync worker stopped")
	return nil
}

// RunOnce performs one resync; overlapping runs are skipped
func (w *ResyncWorker) RunOnce(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Debug("previous resync still running, skipping")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	err := w.syncer.FetchLandlordBookings(runCtx)

	w.mu.Lock()
	w.lastRun = start
	w.lastErr = err
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("resync failed", slog.String("error", err.Error()))
	} else {
		w.logger.Debug("resync complete", slog.Duration("duration", time.Since(start)))
	}

	if w.pruner != nil {
		if n := w.pruner.PruneDedupe(); n > 0 {
			w.logger.Debug("pruned dedupe entries", slog.Int("count", n))
		}
	}
}

// LastRun returns when the last resync started and how it ended
func (w *ResyncWorker) LastRun() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRun, w.lastErr
}
