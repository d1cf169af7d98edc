// Package whisper transcribes recorded utterances with a Whisper-compatible
// HTTP service.
//
// Two flavors are supported:
//   - "openai": OpenAI-compatible API (OpenAI, whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/speech"
)

// Transcript is the text recognized in one clip.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Client talks to a Whisper-compatible endpoint.
type Client struct {
	endpoint  string
	flavor    string
	apiKey    string
	model     string
	language  string
	vadFilter bool
	client    *http.Client
}

// New creates a client from config.
func New(cfg config.STTConfig) *Client {
	flavor := cfg.Type
	if flavor == "" {
		flavor = "openai"
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		flavor:    flavor,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		language:  cfg.Language,
		vadFilter: cfg.VADFilter,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Utterance returns a recognizer that transcribes one recorded clip.
func (c *Client) Utterance(audio []byte, contentType string) speech.Recognizer {
	return speech.RecognizerFunc(func(ctx context.Context) (string, error) {
		t, err := c.Transcribe(ctx, audio, contentType)
		if err != nil {
			return "", err
		}
		return t.Text, nil
	})
}

// Transcribe sends audio to the configured endpoint.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (Transcript, error) {
	if len(audio) == 0 {
		return Transcript{}, fmt.Errorf("empty audio")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	field := "file"
	if c.flavor == "asr" {
		field = "audio_file"
	}
	part, err := writer.CreateFormFile(field, "utterance"+extFromContentType(contentType))
	if err != nil {
		return Transcript{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Transcript{}, fmt.Errorf("writing audio: %w", err)
	}

	reqURL := c.endpoint
	if c.flavor == "asr" {
		// ASR takes its options as query parameters.
		q := url.Values{"task": {"transcribe"}, "output": {"json"}, "encode": {"true"}}
		if c.language != "" {
			q.Set("language", c.language)
		}
		if c.vadFilter {
			q.Set("vad_filter", "true")
		}
		reqURL += "?" + q.Encode()
	} else {
		if c.model != "" {
			_ = writer.WriteField("model", c.model)
		}
		if c.language != "" {
			_ = writer.WriteField("language", c.language)
		}
		_ = writer.WriteField("response_format", "json")
	}
	if err := writer.Close(); err != nil {
		return Transcript{}, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return Transcript{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Transcript{}, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var t Transcript
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return Transcript{}, fmt.Errorf("decoding transcription: %w", err)
	}
	t.Text = strings.TrimSpace(t.Text)

	slog.Debug("transcription complete", "flavor", c.flavor, "text_length", len(t.Text), "language", t.Language)
	return t, nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
