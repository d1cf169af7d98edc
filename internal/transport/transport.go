// Package transport defines the interface for pluggable storevoice
// transports.
//
// Each transport (HTTP, gRPC) exposes the same Service to its clients. The
// service does not care how requests arrive; transports only translate wire
// requests into Service calls and errors into protocol status codes.
package transport

import (
	"context"

	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/message"
)

// Service is what every transport serves.
type Service interface {
	// Classify runs the shared rule table against a stateless request.
	Classify(ctx context.Context, req message.ClassifyRequest) message.ClassifyResponse

	// Speech synthesizes text with the local voice.
	Speech(ctx context.Context, req message.SpeechRequest) (message.SpeechResponse, error)

	// NewSession opens a session and returns its id.
	NewSession(ctx context.Context) (string, error)

	// UpdateContext applies a view update, opening the session if needed.
	UpdateContext(ctx context.Context, sessionID string, update message.ContextUpdate) error

	// Command runs a command cycle on typed text.
	Command(ctx context.Context, sessionID string, req message.CommandRequest) (*message.CommandResult, error)

	// Audio transcribes a recorded utterance and runs a command cycle on it.
	Audio(ctx context.Context, sessionID string, audio []byte, contentType string) (*message.CommandResult, error)

	// History returns up to n entries, most recent first.
	History(ctx context.Context, sessionID string, n int) ([]history.Entry, error)

	// EndSession closes a session.
	EndSession(ctx context.Context, sessionID string) error
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting requests and serves them from svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
