package journal

import (
	"context"
	"sync"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// MemoryJournal keeps the last N events in process. The agent uses it when
// no database is configured.
type MemoryJournal struct {
	mu     sync.Mutex
	events []*domain.PushEvent
	size   int
	nextID int64
}

func NewMemoryJournal(size int) *MemoryJournal {
	if size <= 0 {
		size = 100
	}
	return &MemoryJournal{size: size}
}

func (j *MemoryJournal) Record(_ context.Context, ev *domain.PushEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextID++
	ev.ID = j.nextID
	cp := *ev
	j.events = append(j.events, &cp)
	if len(j.events) > j.size {
		j.events = j.events[len(j.events)-j.size:]
	}
	return nil
}

func (j *MemoryJournal) Recent(_ context.Context, limit int) ([]*domain.PushEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit <= 0 || limit > len(j.events) {
		limit = len(j.events)
	}
	out := make([]*domain.PushEvent, 0, limit)
	for i := len(j.events) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *j.events[i]
		out = append(out, &cp)
	}
	return out, nil
}

var _ domain.EventJournal = (*MemoryJournal)(nil)
