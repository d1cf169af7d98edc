// Package history keeps the rolling log of voice commands for a session.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/storevoice/internal/intent"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 50

// Entry is one recorded exchange. Entries are never modified once appended.
type Entry struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Utterance string      `json:"utterance"`
	Intent    intent.Kind `json:"intent"`
	Response  string      `json:"response"`
	Timestamp time.Time   `json:"timestamp"`
}

// Sink receives a copy of every appended entry, e.g. for durable storage.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Log is a bounded ring buffer of entries.
type Log struct {
	mu      sync.RWMutex
	entries []Entry // ring storage
	next    int     // slot for the next append
	full    bool
	sink    Sink
	now     func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithSink mirrors appended entries to s. Sink failures are logged only.
func WithSink(s Sink) Option {
	return func(l *Log) { l.sink = s }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New creates a log holding at most capacity entries.
func New(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{entries: make([]Entry, capacity), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records an exchange, evicting the oldest entry when full. The ID and
// Timestamp are assigned here when empty.
func (l *Log) Append(ctx context.Context, e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}

	l.mu.Lock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()

	if l.sink != nil {
		if err := l.sink.Record(ctx, e); err != nil {
			slog.Warn("history sink failed", "session_id", e.SessionID, "error", err)
		}
	}
	return e
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.full {
		return len(l.entries)
	}
	return l.next
}

// Recent returns up to n entries, most recent first. n <= 0 returns all.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.next
	if l.full {
		size = len(l.entries)
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.entries)
	l.next, l.full = 0, false
}
