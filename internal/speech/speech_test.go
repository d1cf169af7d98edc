package speech_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nadzzz/storevoice/internal/speech"
	"github.com/nadzzz/storevoice/internal/tts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSynth struct {
	name  string
	audio []byte
	err   error
	calls atomic.Int32
}

func (f *fakeSynth) Name() string { return f.name }

func (f *fakeSynth) Synthesize(ctx context.Context, text string, _ tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &tts.SynthesizeResult{Audio: f.audio, ContentType: "audio/wav"}, nil
}

func (f *fakeSynth) Close() error { return nil }

// blockingRecognizer waits until its context is cancelled or it is released.
type blockingRecognizer struct {
	started chan struct{}
	release chan string
}

func newBlockingRecognizer() *blockingRecognizer {
	return &blockingRecognizer{started: make(chan struct{}), release: make(chan string, 1)}
}

func (b *blockingRecognizer) Recognize(ctx context.Context) (string, error) {
	close(b.started)
	select {
	case text := <-b.release:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestListener_Listen(t *testing.T) {
	l := speech.NewListener()
	text, err := l.Listen(context.Background(), speech.Text("Show me shoes"))
	require.NoError(t, err)
	assert.Equal(t, "Show me shoes", text)
	assert.False(t, l.Listening())
}

func TestListener_RejectsConcurrentListen(t *testing.T) {
	l := speech.NewListener()
	rec := newBlockingRecognizer()

	result := make(chan string)
	go func() {
		text, _ := l.Listen(context.Background(), rec)
		result <- text
	}()
	<-rec.started
	assert.True(t, l.Listening())

	_, err := l.Listen(context.Background(), speech.Text("checkout"))
	assert.ErrorIs(t, err, speech.ErrAlreadyListening)

	rec.release <- "view my cart"
	assert.Equal(t, "view my cart", <-result)
	assert.False(t, l.Listening())
}

func TestListener_Stop(t *testing.T) {
	l := speech.NewListener()
	l.Stop() // idle: no-op

	rec := newBlockingRecognizer()
	errc := make(chan error)
	go func() {
		_, err := l.Listen(context.Background(), rec)
		errc <- err
	}()
	<-rec.started
	l.Stop()

	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.False(t, l.Listening())
}

func TestListener_Errors(t *testing.T) {
	l := speech.NewListener()
	boom := errors.New("microphone unplugged")

	_, err := l.Listen(context.Background(), speech.RecognizerFunc(func(context.Context) (string, error) {
		return "", boom
	}))
	assert.ErrorIs(t, err, boom)

	_, err = l.Listen(context.Background(), speech.Text("   "))
	assert.ErrorIs(t, err, speech.ErrNoSpeech)
	assert.False(t, l.Listening())
}

func TestSpeaker_PrimaryFirst(t *testing.T) {
	primary := &fakeSynth{name: "remote", audio: []byte("mp3")}
	fallback := &fakeSynth{name: "piper", audio: []byte("wav")}

	res := speech.NewSpeaker(primary, fallback).Speak(context.Background(), "Hello!")
	require.NotNil(t, res)
	assert.Equal(t, []byte("mp3"), res.Audio)
	assert.Zero(t, fallback.calls.Load())
}

func TestSpeaker_FallsBack(t *testing.T) {
	for _, primaryErr := range []error{tts.ErrNotConfigured, errors.New("connection refused")} {
		primary := &fakeSynth{name: "remote", err: primaryErr}
		fallback := &fakeSynth{name: "piper", audio: []byte("wav")}

		res := speech.NewSpeaker(primary, fallback).Speak(context.Background(), "Hello!")
		require.NotNil(t, res)
		assert.Equal(t, []byte("wav"), res.Audio)
	}
}

func TestSpeaker_BothFailSilently(t *testing.T) {
	var played atomic.Bool
	s := speech.NewSpeaker(
		&fakeSynth{name: "remote", err: errors.New("500")},
		&fakeSynth{name: "piper", err: errors.New("dial tcp: refused")},
		speech.WithPlayer(speech.PlayerFunc(func(_ context.Context, text string, audio *tts.SynthesizeResult) error {
			played.Store(true)
			assert.Nil(t, audio)
			return nil
		})),
	)
	assert.Nil(t, s.Speak(context.Background(), "Hello!"))
	assert.True(t, played.Load(), "text is still rendered without audio")
	assert.False(t, s.Speaking())
}

func TestSpeaker_NeverOverlaps(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		heard   []string
	)
	started := make(chan struct{}, 2)
	player := speech.PlayerFunc(func(ctx context.Context, text string, _ *tts.SynthesizeResult) error {
		mu.Lock()
		active++
		maxSeen = max(maxSeen, active)
		heard = append(heard, text)
		mu.Unlock()
		started <- struct{}{}

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}

		mu.Lock()
		active--
		mu.Unlock()
		return ctx.Err()
	})
	s := speech.NewSpeaker(&fakeSynth{name: "piper", audio: []byte("wav")}, nil, speech.WithPlayer(player))

	first := make(chan struct{})
	go func() {
		defer close(first)
		s.Speak(context.Background(), "Added Linen Shirt to your cart.")
	}()
	<-started
	assert.True(t, s.Speaking())

	second := make(chan struct{})
	go func() {
		defer close(second)
		s.Speak(context.Background(), "Proceeding to checkout.")
	}()
	<-first
	<-started
	s.Stop()
	<-second

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, []string{"Added Linen Shirt to your cart.", "Proceeding to checkout."}, heard)
	assert.False(t, s.Speaking())
}

func TestSpeaker_StopWhenIdle(t *testing.T) {
	s := speech.NewSpeaker(nil, nil)
	s.Stop()
	assert.Nil(t, s.Speak(context.Background(), "Hi"))
}
