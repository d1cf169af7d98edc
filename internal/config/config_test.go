package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storevoice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.Equal(t, 1000, cfg.Server.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionIdleTimeout)
	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, "local", cfg.Classifier.Backend)
	assert.Equal(t, 3*time.Second, cfg.Classifier.Remote.Timeout)
	assert.Equal(t, 10, cfg.Classifier.Remote.MaxProducts)
	assert.Equal(t, 5*time.Second, cfg.TTS.Remote.Timeout)
	assert.Equal(t, 50, cfg.History.Capacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FileEnvAndSecrets(t *testing.T) {
	t.Setenv("STOREVOICE_HISTORY_CAPACITY", "7")
	t.Setenv("HOOK_TOKEN", "s3cret")

	path := writeConfig(t, `
classifier:
  backend: remote
  remote:
    endpoint: http://classifier.local/classify
    timeout: 750ms
capabilities:
  addToCart:
    endpoint: http://shop.local/hooks/cart
    token: ${HOOK_TOKEN}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "remote", cfg.Classifier.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Classifier.Remote.Timeout)
	assert.Equal(t, 7, cfg.History.Capacity)

	// viper lower-cases map keys.
	hook, ok := cfg.Capabilities["addtocart"]
	require.True(t, ok)
	assert.Equal(t, "s3cret", hook.Token)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:     ServerConfig{MaxSessions: 5},
			Classifier: ClassifierConfig{Backend: "local"},
			History:    HistoryConfig{Capacity: 10},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Classifier.Backend = "remote"
	assert.ErrorContains(t, cfg.Validate(), "endpoint is required")

	cfg = base()
	cfg.Classifier.Backend = "llm"
	assert.ErrorContains(t, cfg.Validate(), "unknown classifier backend")

	cfg = base()
	cfg.History.Capacity = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Server.MaxSessions = 0
	assert.ErrorContains(t, cfg.Validate(), "server.max_sessions")

	cfg = base()
	cfg.Capabilities = map[string]CapabilityConfig{"viewcart": {}}
	assert.ErrorContains(t, cfg.Validate(), "no endpoint")
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("STOREVOICE_TEST_KEY", "abc")
	assert.Equal(t, "abc", resolveEnvRef("${STOREVOICE_TEST_KEY}"))
	assert.Equal(t, "${STOREVOICE_UNSET_KEY}", resolveEnvRef("${STOREVOICE_UNSET_KEY}"))
	assert.Equal(t, "plain", resolveEnvRef("plain"))
}
