package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/history/redis"
	"github.com/nadzzz/storevoice/internal/intent"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Sink) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	sink := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { sink.Close() })
	return mr, sink
}

func TestSink_RecordAndRecent(t *testing.T) {
	_, sink := setup(t, redis.WithMaxLen(3))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, sink.Record(ctx, history.Entry{
			ID:        fmt.Sprintf("e%d", i),
			SessionID: "s1",
			Utterance: fmt.Sprintf("u%d", i),
			Intent:    intent.Help,
		}))
	}
	require.NoError(t, sink.Record(ctx, history.Entry{ID: "other", SessionID: "s2"}))

	entries, err := sink.Recent(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e5", entries[0].ID)
	assert.Equal(t, "e3", entries[2].ID)
	assert.Equal(t, intent.Help, entries[0].Intent)

	entries, err = sink.Recent(ctx, "s1", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSink_TTLAndPrefix(t *testing.T) {
	mr, sink := setup(t, redis.WithTTL(time.Hour), redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, history.Entry{ID: "e1", SessionID: "s1"}))
	assert.True(t, mr.Exists("test:s1"))
	assert.Equal(t, time.Hour, mr.TTL("test:s1"))

	mr.FastForward(2 * time.Hour)
	entries, err := sink.Recent(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSink_Delete(t *testing.T) {
	mr, sink := setup(t)
	ctx := context.Background()

	require.NoError(t, sink.Record(ctx, history.Entry{ID: "e1", SessionID: "s1"}))
	require.NoError(t, sink.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("storevoice:history:s1"))
	assert.NoError(t, sink.Ping(ctx))
}

func TestSink_AsHistorySink(t *testing.T) {
	_, sink := setup(t)
	l := history.New(10, history.WithSink(sink))

	e := l.Append(context.Background(), history.Entry{SessionID: "s9", Utterance: "place my order"})
	entries, err := sink.Recent(context.Background(), "s9", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.True(t, e.Timestamp.Equal(entries[0].Timestamp))
}
