package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, h http.Handler, path string) (int, report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var rep report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rep))
	return rec.Code, rep
}

func TestNotReadyUntilSet(t *testing.T) {
	s := New(0)
	h := s.Handler()

	code, rep := probe(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", rep.Status)

	s.SetReady(true)
	code, _ = probe(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	code, rep = probe(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, rep.Checks)
}

func TestReadinessChecks(t *testing.T) {
	s := New(0)
	s.SetReady(true)
	down := errors.New("connection refused")
	healthy := true
	s.AddCheck("redis", func(context.Context) error {
		if healthy {
			return nil
		}
		return down
	})
	h := s.Handler()

	code, rep := probe(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"redis": "ok"}, rep.Checks)

	healthy = false
	code, rep = probe(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", rep.Status)
	assert.Equal(t, "connection refused", rep.Checks["redis"])

	// Liveness ignores dependency checks.
	code, _ = probe(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}
