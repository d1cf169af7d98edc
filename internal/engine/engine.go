// Package engine runs the voice command cycle for one shopping session:
// listen, classify, resolve, dispatch, speak and log.
//
// Only one cycle runs at a time per engine. Classification failures never
// surface as errors: the classifier chain degrades to the local cascade and,
// failing that, to a generic apology. Only speech capture can fail a cycle.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nadzzz/storevoice/internal/capability"
	"github.com/nadzzz/storevoice/internal/catalog"
	"github.com/nadzzz/storevoice/internal/dispatch"
	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/interpreter"
	"github.com/nadzzz/storevoice/internal/interpreter/local"
	"github.com/nadzzz/storevoice/internal/metrics"
	"github.com/nadzzz/storevoice/internal/resolve"
	"github.com/nadzzz/storevoice/internal/session"
	"github.com/nadzzz/storevoice/internal/speech"
	"github.com/nadzzz/storevoice/internal/tts"
)

// State is the externally visible phase of the engine.
type State string

const (
	Idle       State = "idle"
	Listening  State = "listening"
	Processing State = "processing"
	Speaking   State = "speaking"
)

// ErrEmptyUtterance is returned by Handle for blank input.
var ErrEmptyUtterance = errors.New("empty utterance")

const actionFailed = "Sorry, I couldn't complete that right now. Please try again."

// Options wires an Engine. Nil fields get working defaults.
type Options struct {
	SessionID  string
	Session    *session.Context
	Classifier interpreter.Classifier // default: local cascade
	Catalog    catalog.Catalog        // consulted once per unmatched product name
	Registry   *capability.Registry
	Speaker    *speech.Speaker // nil: responses are not spoken
	Log        *history.Log
}

// Engine owns one session's command cycle.
type Engine struct {
	sessionID  string
	session    *session.Context
	classifier interpreter.Classifier
	resolver   *resolve.Resolver
	registry   *capability.Registry
	dispatcher *dispatch.Dispatcher
	listener   *speech.Listener
	speaker    *speech.Speaker
	log        *history.Log

	cycle sync.Mutex

	mu       sync.RWMutex
	phase    State // Idle, Processing or Speaking; owned by the running cycle
	captures int
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.Session == nil {
		opts.Session = session.New()
	}
	if opts.Classifier == nil {
		opts.Classifier = local.New()
	}
	if opts.Registry == nil {
		opts.Registry = capability.NewRegistry()
	}
	if opts.Log == nil {
		opts.Log = history.New(history.DefaultCapacity)
	}
	return &Engine{
		sessionID:  opts.SessionID,
		session:    opts.Session,
		classifier: opts.Classifier,
		resolver:   resolve.New(opts.Catalog),
		registry:   opts.Registry,
		dispatcher: dispatch.New(opts.Registry),
		listener:   speech.NewListener(),
		speaker:    opts.Speaker,
		log:        opts.Log,
		phase:      Idle,
	}
}

// Session returns the mutable view state the host keeps current.
func (e *Engine) Session() *session.Context { return e.session }

// Registry returns the capability registry the host registers actions on.
func (e *Engine) Registry() *capability.Registry { return e.registry }

// History returns the command log.
func (e *Engine) History() *history.Log { return e.log }

// State reports the current phase. A running cycle's phase wins over a
// capture that started meanwhile.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch {
	case e.phase != Idle:
		return e.phase
	case e.captures > 0:
		return Listening
	}
	return Idle
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.phase = s
	e.mu.Unlock()
}

func (e *Engine) capturing(delta int) {
	e.mu.Lock()
	e.captures += delta
	e.mu.Unlock()
}

// Outcome is the result of one command cycle.
type Outcome struct {
	Transcript string
	Result     intent.Result
	Capability string
	Dispatch   dispatch.Outcome
	Audio      *tts.SynthesizeResult
	Entry      history.Entry
}

// Listen captures one utterance with rec and runs a command cycle on it. An
// in-flight response is interrupted first. Capture failures are returned as
// is; ErrAlreadyListening when a capture is already active.
func (e *Engine) Listen(ctx context.Context, rec speech.Recognizer) (Outcome, error) {
	if e.speaker != nil {
		e.speaker.Stop()
	}
	if e.listener.Listening() {
		return Outcome{}, speech.ErrAlreadyListening
	}

	e.capturing(1)
	text, err := e.listener.Listen(ctx, rec)
	e.capturing(-1)
	if err != nil {
		return Outcome{}, err
	}
	return e.Handle(ctx, text)
}

// Stop aborts an active capture and silences the current response.
func (e *Engine) Stop() {
	e.listener.Stop()
	if e.speaker != nil {
		e.speaker.Stop()
	}
}

// Handle runs a command cycle on an already transcribed utterance.
func (e *Engine) Handle(ctx context.Context, text string) (Outcome, error) {
	if intent.Normalize(text) == "" {
		return Outcome{}, ErrEmptyUtterance
	}

	e.cycle.Lock()
	defer e.cycle.Unlock()
	defer e.setState(Idle)

	start := time.Now()
	logger := slog.With("session_id", e.sessionID)
	e.setState(Processing)

	// Classification is bounded by the classifier's own timeout and is not
	// interrupted by the caller.
	res, err := e.classifier.Classify(context.WithoutCancel(ctx), interpreter.Request{
		Text:     text,
		Snapshot: e.session.Snapshot(),
	})
	if err != nil {
		logger.Error("classification failed", "backend", e.classifier.Name(), "error", err)
		res = intent.Failure()
	}

	// Resolve against the context as it is now, not as it was when the
	// utterance began.
	e.resolver.Resolve(ctx, e.session.Snapshot(), &res)

	out := Outcome{Transcript: text, Result: res}
	out.Capability, _, _ = dispatch.Route(res)
	out.Dispatch, err = e.dispatcher.Dispatch(ctx, res)
	if err != nil {
		out.Result.Response = actionFailed
	}
	logger.Info("command classified",
		"intent", res.Kind, "capability", out.Capability, "dispatch", out.Dispatch)

	if e.speaker != nil && out.Result.Response != "" {
		e.setState(Speaking)
		out.Audio = e.speaker.Speak(ctx, out.Result.Response)
	}

	out.Entry = e.log.Append(ctx, history.Entry{
		SessionID: e.sessionID,
		Utterance: text,
		Intent:    out.Result.Kind,
		Response:  out.Result.Response,
	})

	metrics.CycleDuration.WithLabelValues(string(out.Result.Kind)).Observe(time.Since(start).Seconds())
	logger.Debug("command cycle complete", "duration", time.Since(start))
	return out, nil
}

// Close stops the engine and drops its history. The classifier is shared
// and owned by the caller.
func (e *Engine) Close() {
	e.Stop()
	e.registry.Reset()
	e.log.Clear()
}
