// Package remote implements the TTS Synthesizer against an HTTP speech
// provider speaking the POST /speech contract.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/tts"
)

// DefaultTimeout bounds one synthesis round trip.
const DefaultTimeout = 5 * time.Second

// Synthesizer posts text to a remote speech endpoint.
type Synthesizer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New creates a remote synthesizer from config.
func New(cfg config.RemoteTTSConfig) *Synthesizer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synthesizer{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (s *Synthesizer) Name() string { return "remote" }

// Synthesize requests audio for text. A null audio field is reported as
// tts.ErrNotConfigured.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, _ tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if s.endpoint == "" {
		return nil, tts.ErrNotConfigured
	}

	body, err := json.Marshal(message.SpeechRequest{Action: message.SpeechAction, Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("speech failed (status %d): %s", resp.StatusCode, respBody)
	}

	var out message.SpeechResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding speech response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("speech provider reported failure: %s", out.Error)
	}
	audio, err := out.DecodeAudio()
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, tts.ErrNotConfigured
	}

	contentType := out.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	slog.Debug("remote synthesis complete", "audio_bytes", len(audio), "content_type", contentType)
	return &tts.SynthesizeResult{Audio: audio, ContentType: contentType}, nil
}

// Close releases idle connections.
func (s *Synthesizer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
