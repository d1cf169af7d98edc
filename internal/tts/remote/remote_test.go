package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/message"
	"github.com/nadzzz/storevoice/internal/tts"
	"github.com/nadzzz/storevoice/internal/tts/remote"
)

func provider(t *testing.T, handler func(w http.ResponseWriter, req message.SpeechRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req message.SpeechRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSynthesize(t *testing.T) {
	srv := provider(t, func(w http.ResponseWriter, req message.SpeechRequest) {
		assert.Equal(t, "text-to-speech", req.Action)
		assert.Equal(t, "Proceeding to checkout.", req.Text)
		resp := message.SpeechResponse{Success: true}
		resp.SetAudio([]byte("ID3-fake-mp3"))
		_ = json.NewEncoder(w).Encode(resp)
	})

	res, err := remote.New(config.RemoteTTSConfig{Endpoint: srv.URL}).
		Synthesize(context.Background(), "Proceeding to checkout.", tts.SynthesizeOpts{})
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
}

func TestSynthesize_NullAudioIsNotConfigured(t *testing.T) {
	srv := provider(t, func(w http.ResponseWriter, _ message.SpeechRequest) {
		_, _ = w.Write([]byte(`{"success":true,"audio":null}`))
	})

	_, err := remote.New(config.RemoteTTSConfig{Endpoint: srv.URL}).
		Synthesize(context.Background(), "hi", tts.SynthesizeOpts{})
	assert.ErrorIs(t, err, tts.ErrNotConfigured)
}

func TestSynthesize_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply func(w http.ResponseWriter)
	}{
		{"status", func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed", func(w http.ResponseWriter) { _, _ = w.Write([]byte(`{"success":`)) }},
		{"unsuccessful", func(w http.ResponseWriter) { _, _ = w.Write([]byte(`{"success":false,"error":"quota"}`)) }},
		{"bad base64", func(w http.ResponseWriter) { _, _ = w.Write([]byte(`{"success":true,"audio":"%%%"}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := provider(t, func(w http.ResponseWriter, _ message.SpeechRequest) { tt.reply(w) })
			_, err := remote.New(config.RemoteTTSConfig{Endpoint: srv.URL}).
				Synthesize(context.Background(), "hi", tts.SynthesizeOpts{})
			require.Error(t, err)
			assert.NotErrorIs(t, err, tts.ErrNotConfigured)
		})
	}
}

func TestSynthesize_Timeout(t *testing.T) {
	srv := provider(t, func(w http.ResponseWriter, _ message.SpeechRequest) {
		time.Sleep(200 * time.Millisecond)
	})

	_, err := remote.New(config.RemoteTTSConfig{Endpoint: srv.URL, Timeout: 20 * time.Millisecond}).
		Synthesize(context.Background(), "hi", tts.SynthesizeOpts{})
	assert.Error(t, err)
}

func TestSynthesize_NoEndpoint(t *testing.T) {
	_, err := remote.New(config.RemoteTTSConfig{}).Synthesize(context.Background(), "hi", tts.SynthesizeOpts{})
	assert.ErrorIs(t, err, tts.ErrNotConfigured)
}
