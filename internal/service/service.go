// Package service manages voice sessions and implements transport.Service.
//
// Every session owns an engine with its own context, capability registry,
// speaker and command log. Capabilities configured as webhooks are bound to
// each new session; hosts reach the rest of the engine through the session
// endpoints.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/storevoice/internal/capability"
	"github.com/nadzzz/storevoice/internal/catalog"
	"github.com/nadzzz/storevoice/internal/engine"
	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/interpreter"
	"github.com/nadzzz/storevoice/internal/interpreter/local"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/resolve"
	"github.com/nadzzz/storevoice/internal/speech"
	"github.com/nadzzz/storevoice/internal/tts"
)

var (
	// ErrSessionNotFound is returned for operations on an unknown session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidRequest wraps malformed input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRecognitionUnavailable is returned by Audio when no recognizer is configured.
	ErrRecognitionUnavailable = errors.New("speech recognition not configured")
)

// Transcriber turns a recorded clip into a recognizer for one utterance.
type Transcriber interface {
	Utterance(audio []byte, contentType string) speech.Recognizer
}

// Archive is a history sink that can also read entries back.
type Archive interface {
	history.Sink
	Recent(ctx context.Context, sessionID string, n int) ([]history.Entry, error)
}

// Options wires a Manager.
type Options struct {
	Classifier       interpreter.Classifier // default: local cascade
	Catalog          catalog.Catalog
	Primary          tts.Synthesizer // tried first for session responses
	Fallback         tts.Synthesizer // tried second; also serves /speech
	SynthesisTimeout time.Duration
	Transcriber      Transcriber
	Webhooks         map[string]capability.Webhook // capability name -> hook
	HistoryCapacity  int
	Sink             history.Sink
	MaxSessions      int           // default DefaultMaxSessions
	IdleTimeout      time.Duration // default DefaultIdleTimeout
}

// Session limits applied when Options leaves them unset.
const (
	DefaultMaxSessions = 1000
	DefaultIdleTimeout = 30 * time.Minute
)

type liveSession struct {
	engine   *engine.Engine
	lastUsed atomic.Int64 // unix nanoseconds
}

func (s *liveSession) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

func (s *liveSession) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}

// Manager owns the live sessions.
type Manager struct {
	opts     Options
	cascade  *local.Classifier
	resolver *resolve.Resolver
	client   *http.Client

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

// New creates a session manager.
func New(opts Options) *Manager {
	if opts.Classifier == nil {
		opts.Classifier = local.New()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		opts:     opts,
		cascade:  local.New(),
		resolver: resolve.New(opts.Catalog),
		client:   &http.Client{Timeout: 10 * time.Second},
		sessions: make(map[string]*liveSession),
	}
}

// Classify evaluates the shared rule table and resolves product references
// against the products sent with the request.
func (m *Manager) Classify(ctx context.Context, req message.ClassifyRequest) message.ClassifyResponse {
	if intent.Normalize(req.Text) == "" {
		return message.ClassifyResponse{Success: false, Error: "text is required"}
	}
	snap := req.Snapshot()
	res, err := m.cascade.Classify(ctx, interpreter.Request{Text: req.Text, Snapshot: snap})
	if err != nil {
		return message.ClassifyResponse{Success: false, Error: err.Error()}
	}
	m.resolver.Resolve(ctx, snap, &res)
	return message.NewClassifyResponse(res)
}

// Speech synthesizes text with the fallback (local) voice. The audio field is
// null when no local voice is configured.
func (m *Manager) Speech(ctx context.Context, req message.SpeechRequest) (message.SpeechResponse, error) {
	if req.Action != message.SpeechAction {
		return message.SpeechResponse{}, fmt.Errorf("%w: unsupported action %q", ErrInvalidRequest, req.Action)
	}
	if req.Text == "" {
		return message.SpeechResponse{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if m.opts.Fallback == nil {
		return message.SpeechResponse{Success: true}, nil
	}

	res, err := m.opts.Fallback.Synthesize(ctx, req.Text, tts.SynthesizeOpts{Language: "en"})
	switch {
	case errors.Is(err, tts.ErrNotConfigured):
		return message.SpeechResponse{Success: true}, nil
	case err != nil:
		return message.SpeechResponse{}, fmt.Errorf("synthesizing speech: %w", err)
	}
	out := message.SpeechResponse{Success: true, ContentType: res.ContentType}
	out.SetAudio(res.Audio)
	return out, nil
}

// NewSession opens a session with a generated id.
func (m *Manager) NewSession(_ context.Context) (string, error) {
	id := uuid.NewString()
	m.session(id)
	return id, nil
}

// session returns the engine for id, creating it on first use. A new session
// first evicts idle ones and, at capacity, the least recently used one.
func (m *Manager) session(id string) *engine.Engine {
	now := time.Now()
	m.mu.RLock()
	ls, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		ls.touch(now)
		return ls.engine
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ls, ok := m.sessions[id]; ok {
		ls.touch(now)
		return ls.engine
	}
	m.evictLocked(now)

	var logOpts []history.Option
	if m.opts.Sink != nil {
		logOpts = append(logOpts, history.WithSink(m.opts.Sink))
	}
	e := engine.New(engine.Options{
		SessionID:  id,
		Classifier: m.opts.Classifier,
		Catalog:    m.opts.Catalog,
		Speaker: speech.NewSpeaker(m.opts.Primary, m.opts.Fallback,
			speech.WithSynthesisTimeout(m.opts.SynthesisTimeout)),
		Log: history.New(m.opts.HistoryCapacity, logOpts...),
	})
	for name, hook := range m.opts.Webhooks {
		e.Registry().Register(name, capability.WebhookFunc(name, id, hook, m.client))
	}
	ls = &liveSession{engine: e}
	ls.touch(now)
	m.sessions[id] = ls
	slog.Info("session opened", "session_id", id, "capabilities", len(m.opts.Webhooks))
	return e
}

// evictLocked makes room for one more session. m.mu must be held.
func (m *Manager) evictLocked(now time.Time) {
	m.closeIdleLocked(now)
	if len(m.sessions) < m.opts.MaxSessions {
		return
	}
	var (
		oldest   string
		idleMost time.Duration = -1
	)
	for id, ls := range m.sessions {
		if idle := ls.idleSince(now); idle > idleMost {
			oldest, idleMost = id, idle
		}
	}
	m.closeLocked(oldest, "capacity")
}

func (m *Manager) closeIdleLocked(now time.Time) int {
	var n int
	for id, ls := range m.sessions {
		if ls.idleSince(now) >= m.opts.IdleTimeout {
			m.closeLocked(id, "idle")
			n++
		}
	}
	return n
}

func (m *Manager) closeLocked(id, reason string) {
	ls, ok := m.sessions[id]
	if !ok {
		return
	}
	delete(m.sessions, id)
	ls.engine.Close()
	slog.Info("session evicted", "session_id", id, "reason", reason)
}

// EvictIdle closes the sessions unused for longer than the idle timeout as
// of now and returns how many were closed.
func (m *Manager) EvictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeIdleLocked(now)
}

// Sweep evicts idle sessions every interval until ctx is done.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.EvictIdle(now); n > 0 {
				slog.Debug("idle sessions evicted", "count", n, "open", m.Len())
			}
		}
	}
}

func (m *Manager) lookup(id string) (*engine.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ls, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	ls.touch(time.Now())
	return ls.engine, nil
}

// Engine returns the engine of an open session.
func (m *Manager) Engine(id string) (*engine.Engine, error) { return m.lookup(id) }

// UpdateContext applies the non-nil fields of update to the session.
func (m *Manager) UpdateContext(_ context.Context, sessionID string, update message.ContextUpdate) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}
	sess := m.session(sessionID).Session()
	snap := sess.Snapshot()

	if update.Products != nil || update.Category != nil || update.SearchQuery != nil {
		products, category, query := snap.Products, snap.Category, snap.SearchQuery
		if update.Products != nil {
			products = *update.Products
		}
		if update.Category != nil {
			category = *update.Category
		}
		if update.SearchQuery != nil {
			query = *update.SearchQuery
		}
		sess.SetProducts(products, category, query)
	}
	if update.Page != nil || update.OnCheckout != nil {
		page, onCheckout := snap.Page, snap.OnCheckout
		if update.Page != nil {
			page = *update.Page
		}
		if update.OnCheckout != nil {
			onCheckout = *update.OnCheckout
		}
		sess.SetPage(page, onCheckout)
	}
	if update.UserID != nil {
		sess.SetUser(*update.UserID)
	}
	return nil
}

// Command runs a command cycle on typed text.
func (m *Manager) Command(ctx context.Context, sessionID string, req message.CommandRequest) (*message.CommandResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}
	out, err := m.session(sessionID).Handle(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return commandResult(sessionID, out), nil
}

// Audio transcribes a recorded utterance and runs a command cycle on it.
func (m *Manager) Audio(ctx context.Context, sessionID string, audio []byte, contentType string) (*message.CommandResult, error) {
	if m.opts.Transcriber == nil {
		return nil, ErrRecognitionUnavailable
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio", ErrInvalidRequest)
	}
	out, err := m.session(sessionID).Listen(ctx, m.opts.Transcriber.Utterance(audio, contentType))
	if err != nil {
		return nil, err
	}
	return commandResult(sessionID, out), nil
}

// History returns the session's most recent entries. Sessions no longer in
// memory are read back from the archive when one is configured.
func (m *Manager) History(ctx context.Context, sessionID string, n int) ([]history.Entry, error) {
	e, err := m.lookup(sessionID)
	if err == nil {
		return e.History().Recent(n), nil
	}
	if archive, ok := m.opts.Sink.(Archive); ok {
		entries, aerr := archive.Recent(ctx, sessionID, n)
		if aerr != nil {
			return nil, aerr
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	return nil, err
}

// EndSession closes and forgets a session.
func (m *Manager) EndSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	ls, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	ls.engine.Close()
	slog.Info("session closed", "session_id", sessionID)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close ends every session and releases the classifier and synthesizers.
func (m *Manager) Close() error {
	m.mu.Lock()
	for id, ls := range m.sessions {
		ls.engine.Close()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	errs := []error{m.opts.Classifier.Close()}
	for _, s := range []tts.Synthesizer{m.opts.Primary, m.opts.Fallback} {
		if s != nil {
			errs = append(errs, s.Close())
		}
	}
	return errors.Join(errs...)
}

func commandResult(sessionID string, out engine.Outcome) *message.CommandResult {
	res := &message.CommandResult{
		SessionID:  sessionID,
		EntryID:    out.Entry.ID,
		Transcript: out.Transcript,
		Intent:     out.Result.Kind,
		Params:     out.Result.Params,
		Response:   out.Result.Response,
		Capability: out.Capability,
		Dispatch:   string(out.Dispatch),
		Timestamp:  out.Entry.Timestamp,
	}
	if out.Audio != nil {
		res.SetResponseAudioBytes(out.Audio.Audio)
		res.ResponseContentType = out.Audio.ContentType
	}
	return res
}
