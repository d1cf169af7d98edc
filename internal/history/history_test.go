package history_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/intent"
)

type recordingSink struct {
	entries []history.Entry
	err     error
}

func (s *recordingSink) Record(_ context.Context, e history.Entry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func TestLog_AppendAssignsIdentity(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := history.New(5, history.WithClock(func() time.Time { return at }))

	e := l.Append(context.Background(), history.Entry{SessionID: "s1", Utterance: "hello", Intent: intent.Greeting})
	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, at, e.Timestamp)
	assert.Equal(t, []history.Entry{e}, l.Recent(0))
}

func TestLog_BoundedMostRecentFirst(t *testing.T) {
	l := history.New(3)
	for i := 1; i <= 5; i++ {
		l.Append(context.Background(), history.Entry{Utterance: fmt.Sprintf("u%d", i)})
	}

	assert.Equal(t, 3, l.Len())
	var got []string
	for _, e := range l.Recent(0) {
		got = append(got, e.Utterance)
	}
	assert.Equal(t, []string{"u5", "u4", "u3"}, got)

	recent := l.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "u5", recent[0].Utterance)
}

func TestLog_PartiallyFilled(t *testing.T) {
	l := history.New(10)
	l.Append(context.Background(), history.Entry{Utterance: "a"})
	l.Append(context.Background(), history.Entry{Utterance: "b"})

	assert.Equal(t, 2, l.Len())
	assert.Len(t, l.Recent(5), 2)
	assert.Equal(t, "b", l.Recent(1)[0].Utterance)
}

func TestLog_Clear(t *testing.T) {
	l := history.New(2)
	l.Append(context.Background(), history.Entry{Utterance: "a"})
	l.Clear()
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Recent(0))
}

func TestLog_SinkFailureDoesNotLoseEntry(t *testing.T) {
	sink := &recordingSink{err: errors.New("redis down")}
	l := history.New(2, history.WithSink(sink))

	e := l.Append(context.Background(), history.Entry{Utterance: "checkout"})
	assert.Equal(t, []history.Entry{e}, sink.entries)
	assert.Equal(t, 1, l.Len())
}
