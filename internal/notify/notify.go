// Package notify delivers transient user-facing notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aryan0dhankhar/rentdesk/internal/domain"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "notify"))}
}

func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) {
	level := slog.LevelInfo
	if note.Level == domain.LevelError {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, note.Message, slog.String("level_hint", string(note.Level)))
}

// WriterNotifier prints one line per notification, for the CLI watch command
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, note domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", note.Level, note.Message)
}

// ChanNotifier forwards notifications to a buffered channel and drops them
// when the reader falls behind.
type ChanNotifier struct {
	C chan domain.Notification
}

func NewChanNotifier(buffer int) *ChanNotifier {
	return &ChanNotifier{C: make(chan domain.Notification, buffer)}
}

func (n *ChanNotifier) Notify(_ context.Context, note domain.Notification) {
	select {
	case n.C <- note:
	default:
	}
}

// Multi fans a notification out to several notifiers
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, note domain.Notification) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, note)
		}
	}
}

// Filter forwards only notifications of the listed levels
type Filter struct {
	next   domain.Notifier
	levels map[domain.Level]bool
}

func Only(next domain.Notifier, levels ...domain.Level) *Filter {
	f := &Filter{next: next, levels: make(map[domain.Level]bool, len(levels))}
	for _, l := range levels {
		f.levels[l] = true
	}
	return f
}

func (f *Filter) Notify(ctx context.Context, note domain.Notification) {
	if f.levels[note.Level] {
		f.next.Notify(ctx, note)
	}
}
