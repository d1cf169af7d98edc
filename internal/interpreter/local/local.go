// Package local implements the Classifier interface by evaluating the intent
// rule table in-process. It needs no network and never fails, which makes it
// the fallback for every other backend.
package local

import (
	"context"
	"log/slog"

	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/interpreter"
	"github.com/nadzzz/storevoice/internal/metrics"
)

// Classifier evaluates a rule cascade.
type Classifier struct {
	cascade *intent.Cascade
}

// New creates a local classifier over rules, or over the default rule table
// when none are given.
func New(rules ...intent.Rule) *Classifier {
	return &Classifier{cascade: intent.NewCascade(rules...)}
}

// Name returns the backend identifier.
func (c *Classifier) Name() string { return "local" }

// Classify normalizes the utterance and runs the cascade.
func (c *Classifier) Classify(_ context.Context, req interpreter.Request) (intent.Result, error) {
	text := intent.Normalize(req.Text)
	res, rule := c.cascade.Trace(intent.Input{Text: text, Snapshot: req.Snapshot})

	slog.Debug("local classification complete", "rule", rule, "intent", res.Kind, "text_length", len(text))
	metrics.Classifications.WithLabelValues(c.Name(), string(res.Kind)).Inc()
	return res, nil
}

// Close is a no-op for the local classifier.
func (c *Classifier) Close() error { return nil }
