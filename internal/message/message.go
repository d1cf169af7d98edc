// Package message defines the wire types exchanged by the storevoice
// transports: the remote classification and synthesis contracts and the
// session endpoints.
package message

import (
	"encoding/base64"
	"time"

	"github.com/nadzzz/storevoice/internal/intent"
	"github.com/nadzzz/storevoice/internal/session"
)

// DefaultMaxProducts bounds how many products are sent with a classify request.
const DefaultMaxProducts = 10

// ClassifyContext is the view state sent alongside an utterance.
type ClassifyContext struct {
	CurrentPage       session.Page      `json:"currentPage"`
	ProductsAvailable int               `json:"productsAvailable"`
	OnCheckout        bool              `json:"onCheckout"`
	CurrentProducts   []session.Product `json:"currentProducts"`
}

// ClassifyRequest is the body of POST /classify.
type ClassifyRequest struct {
	Text    string          `json:"text"`
	UserID  string          `json:"userId,omitempty"`
	Context ClassifyContext `json:"context"`
}

// NewClassifyRequest projects a snapshot onto the wire, keeping at most
// maxProducts products in display order.
func NewClassifyRequest(text string, snap session.Snapshot, maxProducts int) ClassifyRequest {
	if maxProducts <= 0 {
		maxProducts = DefaultMaxProducts
	}
	products := snap.Products
	if len(products) > maxProducts {
		products = products[:maxProducts]
	}
	return ClassifyRequest{
		Text:   text,
		UserID: snap.UserID,
		Context: ClassifyContext{
			CurrentPage:       snap.Page,
			ProductsAvailable: len(snap.Products),
			OnCheckout:        snap.OnCheckout,
			CurrentProducts:   products,
		},
	}
}

// Snapshot rebuilds the session view the request describes.
func (r ClassifyRequest) Snapshot() session.Snapshot {
	return session.Snapshot{
		Products:   r.Context.CurrentProducts,
		Page:       r.Context.CurrentPage,
		OnCheckout: r.Context.OnCheckout,
		UserID:     r.UserID,
	}
}

// ClassifyResponse is the body returned by POST /classify.
type ClassifyResponse struct {
	Success  bool           `json:"success"`
	Intent   intent.Kind    `json:"intent,omitempty"`
	Response string         `json:"response,omitempty"`
	Data     *intent.Params `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Result converts a successful response into an intent result.
func (r ClassifyResponse) Result() intent.Result {
	res := intent.Result{Kind: r.Intent, Response: r.Response}
	if r.Data != nil {
		res.Params = *r.Data
	}
	return res
}

// NewClassifyResponse wraps a classification result.
func NewClassifyResponse(res intent.Result) ClassifyResponse {
	params := res.Params
	return ClassifyResponse{Success: true, Intent: res.Kind, Response: res.Response, Data: &params}
}

// SpeechAction is the only action accepted by the synthesis endpoint.
const SpeechAction = "text-to-speech"

// SpeechRequest is the body of POST /speech.
type SpeechRequest struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

// SpeechResponse carries base64 audio, or a null audio field when no
// provider is configured.
type SpeechResponse struct {
	Success     bool    `json:"success"`
	Audio       *string `json:"audio"`
	ContentType string  `json:"contentType,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// SetAudio base64-encodes raw audio bytes into Audio.
func (r *SpeechResponse) SetAudio(audio []byte) {
	if len(audio) > 0 {
		enc := base64.StdEncoding.EncodeToString(audio)
		r.Audio = &enc
	}
}

// DecodeAudio returns the raw audio bytes, or nil when Audio is null.
func (r SpeechResponse) DecodeAudio() ([]byte, error) {
	if r.Audio == nil || *r.Audio == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(*r.Audio)
}

// ContextUpdate is the body of PUT /sessions/{id}/context. Nil fields are
// left untouched.
type ContextUpdate struct {
	Products    *[]session.Product `json:"products,omitempty"`
	Category    *string            `json:"category,omitempty"`
	SearchQuery *string            `json:"searchQuery,omitempty"`
	Page        *session.Page      `json:"page,omitempty"`
	OnCheckout  *bool              `json:"onCheckout,omitempty"`
	UserID      *string            `json:"userId,omitempty"`
}

// CommandRequest is the body of POST /sessions/{id}/commands.
type CommandRequest struct {
	Text string `json:"text"`
}

// CommandResult is the outcome of one command cycle.
type CommandResult struct {
	SessionID  string        `json:"sessionId"`
	EntryID    string        `json:"entryId,omitempty"`
	Transcript string        `json:"transcript"`
	Intent     intent.Kind   `json:"intent"`
	Params     intent.Params `json:"params"`
	Response   string        `json:"response"`
	Capability string        `json:"capability,omitempty"`
	Dispatch   string        `json:"dispatch"`

	// ResponseAudio is the synthesized response as base64, when available.
	ResponseAudio       string `json:"responseAudio,omitempty"`
	ResponseContentType string `json:"responseContentType,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// SetResponseAudioBytes base64-encodes raw audio bytes into ResponseAudio.
func (r *CommandResult) SetResponseAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.ResponseAudio = base64.StdEncoding.EncodeToString(audio)
	}
}

// ErrorResponse is the JSON body of every non-2xx session response.
type ErrorResponse struct {
	Error string `json:"error"`
}
