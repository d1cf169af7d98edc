// Package speech implements the voice input and output channels of a
// session: a Listener that captures one utterance at a time and a Speaker
// that never talks over itself.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrAlreadyListening is returned by Listen while a capture is active.
	ErrAlreadyListening = errors.New("already listening")
	// ErrNoSpeech is returned when the recognizer heard nothing.
	ErrNoSpeech = errors.New("no speech recognized")
)

// Recognizer captures and transcribes a single utterance.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context) (string, error) { return f(ctx) }

// Text returns a recognizer that yields text as if it had been spoken.
func Text(text string) Recognizer {
	return RecognizerFunc(func(context.Context) (string, error) { return text, nil })
}

// Listener is the input channel state machine: Idle, then Listening for the
// duration of one Listen call.
type Listener struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewListener creates an idle listener.
func NewListener() *Listener { return &Listener{} }

// Listening reports whether a capture is in progress.
func (l *Listener) Listening() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Listen runs rec for one utterance and returns its raw transcript. It fails
// fast with ErrAlreadyListening when a capture is already active. On any
// outcome the listener returns to Idle.
func (l *Listener) Listen(ctx context.Context, rec Recognizer) (string, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return "", ErrAlreadyListening
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.cancel = nil
		l.mu.Unlock()
		cancel()
	}()

	text, err := rec.Recognize(ctx)
	if err != nil {
		return "", fmt.Errorf("recognizing speech: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// Stop cancels an active capture. It is a no-op when idle.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
}
