// Package tts defines the interface for text-to-speech synthesis.
//
// Storevoice speaks every command response. A remote provider is tried
// first and a local Piper server second; see the speech package for the
// fallback and interruption rules.
package tts

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a synthesizer whose provider has no
// credentials or endpoint. It is a normal outcome, not a fault.
var ErrNotConfigured = errors.New("speech synthesis not configured")

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g., "en", "fr", "es") to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the provider identifier (e.g., "remote", "piper").
	Name() string

	// Synthesize generates audio for text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio, usually a WAV file.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string

	// SampleRate is the audio sample rate in Hz (e.g., 22050). Zero if unknown.
	SampleRate int

	// Channels is the number of audio channels. Zero if unknown.
	Channels int
}
