// Package redis mirrors command log entries into per-session redis lists.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/nadzzz/storevoice/internal/history"
)

// Sink implements history.Sink with LPUSH + LTRIM per session key.
type Sink struct {
	client *backend.Client
	prefix string
	maxLen int64
	ttl    time.Duration
}

type Option func(*Sink)

// WithPrefix sets the key prefix for session lists.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithMaxLen caps each session list. Zero keeps everything.
func WithMaxLen(n int) Option {
	return func(s *Sink) { s.maxLen = int64(n) }
}

// WithTTL expires idle session lists.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sink) { s.ttl = ttl }
}

// New connects a sink to the redis server at address.
func New(address, password string, db int, opts ...Option) *Sink {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a sink over an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	s := &Sink{client: client, prefix: "storevoice:history:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) key(sessionID string) string {
	return s.prefix + sessionID
}

// Record pushes e onto the head of its session list.
func (s *Sink) Record(ctx context.Context, e history.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	key := s.key(e.SessionID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	if s.maxLen > 0 {
		pipe.LTrim(ctx, key, 0, s.maxLen-1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record entry: %w", err)
	}
	return nil
}

// Recent returns up to n entries for a session, most recent first. n <= 0
// returns the whole list.
func (s *Sink) Recent(ctx context.Context, sessionID string, n int) ([]history.Entry, error) {
	stop := int64(n) - 1
	if n <= 0 {
		stop = -1
	}
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]history.Entry, 0, len(vals))
	for _, v := range vals {
		var e history.Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Delete drops a session's list.
func (s *Sink) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// Ping checks connectivity; used as a readiness check.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}
