package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nadzzz/storevoice/internal/metrics"
	"github.com/nadzzz/storevoice/internal/tts"
)

// DefaultSynthesisTimeout bounds each synthesizer attempt.
const DefaultSynthesisTimeout = 5 * time.Second

// Player renders a spoken response, e.g. plays audio on a device or prints
// the text to a console. audio is nil when no synthesizer produced any.
type Player interface {
	Play(ctx context.Context, text string, audio *tts.SynthesizeResult) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context, text string, audio *tts.SynthesizeResult) error

// Play calls f.
func (f PlayerFunc) Play(ctx context.Context, text string, audio *tts.SynthesizeResult) error {
	return f(ctx, text, audio)
}

// Speaker is the output channel state machine: Idle, then Speaking for the
// duration of one Speak call. A new utterance cancels and waits out the
// previous one, so two responses never overlap.
type Speaker struct {
	synthesizers []tts.Synthesizer
	player       Player
	timeout      time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SpeakerOption configures a Speaker.
type SpeakerOption func(*Speaker)

// WithPlayer renders every utterance through p.
func WithPlayer(p Player) SpeakerOption {
	return func(s *Speaker) { s.player = p }
}

// WithSynthesisTimeout overrides DefaultSynthesisTimeout.
func WithSynthesisTimeout(d time.Duration) SpeakerOption {
	return func(s *Speaker) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSpeaker creates a speaker that tries primary then fallback. Either may
// be nil.
func NewSpeaker(primary, fallback tts.Synthesizer, opts ...SpeakerOption) *Speaker {
	s := &Speaker{timeout: DefaultSynthesisTimeout}
	for _, syn := range []tts.Synthesizer{primary, fallback} {
		if syn != nil {
			s.synthesizers = append(s.synthesizers, syn)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Speaking reports whether an utterance is in flight.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Speak synthesizes and plays text. It returns the audio that was produced,
// or nil when every synthesizer failed or was not configured. Failures are
// logged and never returned.
func (s *Speaker) Speak(ctx context.Context, text string) *tts.SynthesizeResult {
	s.mu.Lock()
	for s.cancel != nil {
		s.cancel()
		done := s.done
		s.mu.Unlock()
		<-done
		s.mu.Lock()
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	defer func() {
		close(done)
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
		cancel()
	}()

	audio := s.synthesize(ctx, text)
	if s.player != nil && ctx.Err() == nil {
		if err := s.player.Play(ctx, text, audio); err != nil && ctx.Err() == nil {
			slog.Warn("playback failed", "error", err)
		}
	}
	return audio
}

func (s *Speaker) synthesize(ctx context.Context, text string) *tts.SynthesizeResult {
	for _, syn := range s.synthesizers {
		if ctx.Err() != nil {
			return nil
		}
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		res, err := syn.Synthesize(attemptCtx, text, tts.SynthesizeOpts{Language: "en"})
		cancel()

		switch {
		case err == nil && res != nil && len(res.Audio) > 0:
			metrics.Syntheses.WithLabelValues(syn.Name(), metrics.OK).Inc()
			return res
		case errors.Is(err, tts.ErrNotConfigured):
			slog.Debug("synthesizer not configured, trying next", "provider", syn.Name())
			metrics.Syntheses.WithLabelValues(syn.Name(), metrics.Unavailable).Inc()
		default:
			slog.Warn("synthesis failed, trying next", "provider", syn.Name(), "error", err)
			metrics.Syntheses.WithLabelValues(syn.Name(), metrics.Failed).Inc()
		}
	}
	return nil
}

// Stop cancels the in-flight utterance, if any, without waiting for it.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
