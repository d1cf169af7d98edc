// Package remote implements the Classifier interface against an HTTP
// classification service speaking the POST /classify contract.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/interpreter"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/metrics"
)

// DefaultTimeout bounds a classification round trip.
const DefaultTimeout = 3 * time.Second

// Classifier posts utterances to a remote classification endpoint.
type Classifier struct {
	endpoint    string
	maxProducts int
	client      *http.Client
}

// New creates a remote classifier from config.
func New(cfg config.RemoteClassifierConfig) *Classifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxProducts := cfg.MaxProducts
	if maxProducts <= 0 {
		maxProducts = message.DefaultMaxProducts
	}
	return &Classifier{
		endpoint:    cfg.Endpoint,
		maxProducts: maxProducts,
		client:      &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (c *Classifier) Name() string { return "remote" }

// Classify sends the utterance with a bounded view of the session. Transport
// errors, non-2xx statuses, malformed bodies and success:false are all
// returned as errors so a Fallback can take over.
func (c *Classifier) Classify(ctx context.Context, req interpreter.Request) (intent.Result, error) {
	if c.endpoint == "" {
		return intent.Result{}, errors.New("remote classifier endpoint not configured")
	}

	body, err := json.Marshal(message.NewClassifyRequest(req.Text, req.Snapshot, c.maxProducts))
	if err != nil {
		return intent.Result{}, fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return intent.Result{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return intent.Result{}, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return intent.Result{}, fmt.Errorf("classify failed (status %d): %s", resp.StatusCode, respBody)
	}

	var out message.ClassifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return intent.Result{}, fmt.Errorf("decoding classify response: %w", err)
	}
	if !out.Success {
		return intent.Result{}, fmt.Errorf("classifier reported failure: %s", out.Error)
	}
	if !out.Intent.Valid() {
		return intent.Result{}, fmt.Errorf("classifier returned unknown intent %q", out.Intent)
	}

	slog.Debug("remote classification complete", "intent", out.Intent, "duration", time.Since(start))
	metrics.Classifications.WithLabelValues(c.Name(), string(out.Intent)).Inc()
	return out.Result(), nil
}

// Close releases idle connections.
func (c *Classifier) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
