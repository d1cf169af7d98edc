// Package interpreter defines the classifier contract used by the command
// cycle and the fallback chain that lets a remote classifier degrade to the
// in-process one.
//
// Storevoice ships two backends: remote (an HTTP classification service) and
// local (the rule cascade evaluated in-process).
package interpreter

import (
	"context"
	"log/slog"

	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/metrics"
	"github.com/nadzzz/storevoice/internal/session"
)

// Request is a normalized utterance and the view it was spoken against.
type Request struct {
	Text     string
	Snapshot session.Snapshot
}

// Classifier maps an utterance to an intent.
type Classifier interface {
	// Name returns the backend identifier (e.g., "remote", "local").
	Name() string

	// Classify returns the intent for req.Text. Product references are left
	// for the caller to resolve against its own session state.
	Classify(ctx context.Context, req Request) (intent.Result, error)

	// Close releases any resources held by the classifier.
	Close() error
}

// Fallback tries a primary classifier and falls back to a secondary one on
// any error. It never returns an error itself.
type Fallback struct {
	primary   Classifier
	secondary Classifier
}

// NewFallback chains primary and secondary.
func NewFallback(primary, secondary Classifier) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

// Name returns the chain identifier, e.g. "remote>local".
func (f *Fallback) Name() string { return f.primary.Name() + ">" + f.secondary.Name() }

// Classify returns the primary result, the secondary result when the primary
// fails, or intent.Failure when both fail.
func (f *Fallback) Classify(ctx context.Context, req Request) (intent.Result, error) {
	res, err := f.primary.Classify(ctx, req)
	if err == nil {
		return res, nil
	}
	slog.Warn("classifier failed, falling back",
		"primary", f.primary.Name(), "fallback", f.secondary.Name(), "error", err)
	metrics.ClassifierFallbacks.WithLabelValues(f.primary.Name()).Inc()

	res, err = f.secondary.Classify(ctx, req)
	if err != nil {
		slog.Error("fallback classifier failed", "backend", f.secondary.Name(), "error", err)
		return intent.Failure(), nil
	}
	return res, nil
}

// Close closes both classifiers and returns the first error.
func (f *Fallback) Close() error {
	err := f.primary.Close()
	if serr := f.secondary.Close(); err == nil {
		err = serr
	}
	return err
}
