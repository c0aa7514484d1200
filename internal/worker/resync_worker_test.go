package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aryan0dhankhar/rentdesk/internal/infrastructure/logger"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (s *countingSyncer) FetchLandlordBookings(ctx context.Context) error {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	return s.err
}

type countingPruner struct{ calls atomic.Int32 }

func (p *countingPruner) PruneDedupe() int {
	p.calls.Add(1)
	return 0
}

func TestRunOnceRecordsResult(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("boom")}
	pruner := &countingPruner{}
	w := NewResyncWorker(syncer, pruner, logger.Discard(), "@every 1h", time.Second)

	w.RunOnce(context.Background())

	at, err := w.LastRun()
	if at.IsZero() || err == nil {
		t.Fatalf("last run = %v, %v", at, err)
	}
	if syncer.calls.Load() != 1 || pruner.calls.Load() != 1 {
		t.Fatalf("calls = %d/%d", syncer.calls.Load(), pruner.calls.Load())
	}
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	syncer := &countingSyncer{block: make(chan struct{})}
	w := NewResyncWorker(syncer, nil, logger.Discard(), "@every 1h", time.Second)

	done := make(chan struct{})
	go func() {
		w.RunOnce(context.Background())
		close(done)
	}()
	for syncer.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	w.RunOnce(context.Background())
	close(syncer.block)
	<-done

	if got := syncer.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := NewResyncWorker(&countingSyncer{}, nil, logger.Discard(), "every now and then", time.Second)
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected schedule error")
	}
}

func TestStartRunsOnSchedule(t *testing.T) {
	syncer := &countingSyncer{}
	w := NewResyncWorker(syncer, nil, logger.Discard(), "@every 1s", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for syncer.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start returned %v", err)
	}
}
