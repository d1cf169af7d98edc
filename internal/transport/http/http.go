// Package http implements the HTTP transport for storevoice.
//
// It serves the remote classifier and speech contracts used by storefront
// clients, plus the session endpoints that drive server-side command cycles.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/storevoice/internal/docs" // registers the OpenAPI document
	"github.com/nadzzz/storevoice/internal/engine"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/service"
	"github.com/nadzzz/storevoice/internal/speech"
	"github.com/nadzzz/storevoice/internal/transport"
)

// Request body caps.
const (
	maxAudioBytes = 25 << 20
	maxJSONBytes  = 1 << 20
)

var errBodyTooLarge = errors.New("request body too large")

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and serves requests from svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// Handler builds the router for svc.
func Handler(svc transport.Service) http.Handler {
	h := &handlers{svc: svc}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/classify", h.classify)
	r.Post("/speech", h.speech)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.newSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/context", h.updateContext)
			r.Post("/commands", h.command)
			r.Post("/audio", h.audio)
			r.Get("/history", h.history)
			r.Delete("/", h.endSession)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	return r
}

type handlers struct {
	svc transport.Service
}

// classify implements the remote classifier contract.
//
// @Summary     Classify an utterance
// @Description Runs the shared intent rule table against the utterance and the view state sent with it,
// @Description and resolves product references against the products in the request.
// @Tags        classify
// @Accept      json
// @Produce     json
// @Param       request  body      message.ClassifyRequest   true  "Utterance and view state"
// @Success     200      {object}  message.ClassifyResponse  "Classified intent"
// @Failure     400      {object}  message.ClassifyResponse  "Invalid request body"
// @Router      /classify [post]
func (h *handlers) classify(w http.ResponseWriter, r *http.Request) {
	var req message.ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, message.ClassifyResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Classify(r.Context(), req))
}

// speech implements the synthesis contract.
//
// @Summary     Synthesize speech
// @Description Returns base64 audio for the text, or a null audio field when no voice is configured.
// @Tags        speech
// @Accept      json
// @Produce     json
// @Param       request  body      message.SpeechRequest   true  "Synthesis request"
// @Success     200      {object}  message.SpeechResponse  "Synthesized audio"
// @Failure     400      {object}  message.ErrorResponse   "Invalid request"
// @Failure     500      {object}  message.ErrorResponse   "Voice backend failed"
// @Router      /speech [post]
func (h *handlers) speech(w http.ResponseWriter, r *http.Request) {
	var req message.SpeechRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.svc.Speech(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// newSession opens a session.
//
// @Summary  Open a session
// @Tags     sessions
// @Produce  json
// @Success  201  {object}  map[string]string  "Session id"
// @Router   /sessions [post]
func (h *handlers) newSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NewSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

// updateContext replaces parts of the session's view state.
//
// @Summary     Update session context
// @Description Fields left out of the body keep their current value. The session is opened if needed.
// @Tags        sessions
// @Accept      json
// @Param       id       path  string                 true  "Session id"
// @Param       request  body  message.ContextUpdate  true  "View state"
// @Success     204
// @Failure     400  {object}  message.ErrorResponse  "Invalid request body"
// @Router      /sessions/{id}/context [put]
func (h *handlers) updateContext(w http.ResponseWriter, r *http.Request) {
	var update message.ContextUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.UpdateContext(r.Context(), chi.URLParam(r, "id"), update); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// command runs a command cycle on typed text.
//
// @Summary  Run a text command
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    id       path      string                  true  "Session id"
// @Param    request  body      message.CommandRequest  true  "Utterance"
// @Success  200      {object}  message.CommandResult   "Command outcome"
// @Failure  400      {object}  message.ErrorResponse   "Invalid request"
// @Router   /sessions/{id}/commands [post]
func (h *handlers) command(w http.ResponseWriter, r *http.Request) {
	var req message.CommandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Command(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// audio runs a command cycle on a recorded utterance.
//
// @Summary     Run a spoken command
// @Description POST the raw audio bytes with their Content-Type (audio/wav, audio/webm, ...).
// @Tags        sessions
// @Accept      audio/wav
// @Accept      audio/webm
// @Produce     json
// @Param       id  path      string                 true  "Session id"
// @Success     200 {object}  message.CommandResult  "Command outcome"
// @Failure     409 {object}  message.ErrorResponse  "Already listening"
// @Failure     422 {object}  message.ErrorResponse  "No speech recognized"
// @Failure     503 {object}  message.ErrorResponse  "Speech recognition not configured"
// @Router      /sessions/{id}/audio [post]
func (h *handlers) audio(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	if err != nil {
		writeError(w, bodyError("reading audio", err))
		return
	}
	res, err := h.svc.Audio(r.Context(), chi.URLParam(r, "id"), audio, r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// history lists recent commands.
//
// @Summary  Command history
// @Tags     sessions
// @Produce  json
// @Param    id     path      string  true   "Session id"
// @Param    limit  query     int     false  "Maximum entries (default all)"
// @Success  200    {array}   history.Entry          "Most recent first"
// @Failure  404    {object}  message.ErrorResponse  "Unknown session"
// @Router   /sessions/{id}/history [get]
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", service.ErrInvalidRequest))
			return
		}
		limit = n
	}
	entries, err := h.svc.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// endSession closes a session.
//
// @Summary  Close a session
// @Tags     sessions
// @Param    id  path  string  true  "Session id"
// @Success  204
// @Failure  404  {object}  message.ErrorResponse  "Unknown session"
// @Router   /sessions/{id} [delete]
func (h *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, engine.ErrEmptyUtterance):
		return http.StatusBadRequest
	case errors.Is(err, speech.ErrAlreadyListening):
		return http.StatusConflict
	case errors.Is(err, speech.ErrNoSpeech):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrRecognitionUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads at most maxJSONBytes of r's body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(v); err != nil {
		return bodyError("invalid json", err)
	}
	return nil
}

func bodyError(what string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %s: %v", service.ErrInvalidRequest, what, err)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		slog.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, message.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
