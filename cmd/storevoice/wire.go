package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nadzzz/storevoice/internal/capability"
	"github.com/nadzzz/storevoice/internal/catalog"
	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/history/redis"
	"github.com/nadzzz/storevoice/internal/interpreter"
	localinterp "github.com/nadzzz/storevoice/internal/interpreter/local"
	remoteinterp "github.com/nadzzz/storevoice/internal/interpreter/remote"
	"github.com/nadzzz/storevoice/internal/service"
	"github.com/nadzzz/storevoice/internal/stt/whisper"
	"github.com/nadzzz/storevoice/internal/tts"
	"github.com/nadzzz/storevoice/internal/tts/piper"
	remotetts "github.com/nadzzz/storevoice/internal/tts/remote"
)

// loadConfig loads configuration from the --config flag and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	config.SetupLogging(cfg.Logging)
	return cfg, nil
}

// newClassifier builds the classifier chain. The remote backend always falls
// back to the local cascade.
func newClassifier(cfg config.ClassifierConfig) interpreter.Classifier {
	local := localinterp.New()
	if cfg.Backend != "remote" {
		slog.Info("using local classifier")
		return local
	}
	slog.Info("using remote classifier", "endpoint", cfg.Remote.Endpoint, "timeout", cfg.Remote.Timeout)
	return interpreter.NewFallback(remoteinterp.New(cfg.Remote), local)
}

// loadCatalog returns the configured product catalog, or nil when none is set.
func loadCatalog(cfg config.CatalogConfig) (*catalog.Static, error) {
	if cfg.File == "" {
		return nil, nil
	}
	c, err := catalog.LoadFile(cfg.File)
	if err != nil {
		return nil, err
	}
	slog.Info("catalog loaded", "file", cfg.File, "products", len(c.Products()))
	return c, nil
}

// newVoices returns the primary (remote) and fallback (piper) synthesizers.
// Either may be nil.
func newVoices(cfg config.TTSConfig) (primary, fallback tts.Synthesizer) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Remote.Endpoint != "" {
		primary = remotetts.New(cfg.Remote)
		slog.Info("remote voice enabled", "endpoint", cfg.Remote.Endpoint)
	}
	if cfg.Piper.Endpoint != "" || len(cfg.Piper.Endpoints) > 0 {
		fallback = piper.New(cfg.Piper)
		slog.Info("piper voice enabled", "endpoint", cfg.Piper.Endpoint, "languages", len(cfg.Piper.Endpoints))
	}
	return primary, fallback
}

// newTranscriber returns the whisper client, or nil when no endpoint is set.
func newTranscriber(cfg config.STTConfig) service.Transcriber {
	if cfg.Endpoint == "" {
		return nil
	}
	slog.Info("speech recognition enabled", "endpoint", cfg.Endpoint, "type", cfg.Type)
	return whisper.New(cfg)
}

// newArchive returns the redis command log sink, or nil when disabled.
func newArchive(cfg config.RedisConfig) *redis.Sink {
	if !cfg.Enabled {
		return nil
	}
	slog.Info("redis history enabled", "addr", cfg.Addr, "prefix", cfg.Prefix)
	return redis.New(cfg.Addr, cfg.Password, cfg.DB,
		redis.WithPrefix(cfg.Prefix),
		redis.WithMaxLen(cfg.MaxLen),
		redis.WithTTL(cfg.TTL),
	)
}

// webhooks maps configured capabilities onto their canonical names.
func webhooks(caps map[string]config.CapabilityConfig) (map[string]capability.Webhook, error) {
	out := make(map[string]capability.Webhook, len(caps))
	for key, c := range caps {
		name, ok := capability.Canonical(key)
		if !ok {
			return nil, fmt.Errorf("unknown capability %q", key)
		}
		out[name] = capability.Webhook{Endpoint: c.Endpoint, Token: c.Token}
	}
	return out, nil
}

// newService wires a session manager from configuration. The returned
// archive is nil when redis history is disabled.
func newService(cfg *config.Config) (*service.Manager, *redis.Sink, error) {
	hooks, err := webhooks(cfg.Capabilities)
	if err != nil {
		return nil, nil, err
	}
	static, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	primary, fallback := newVoices(cfg.TTS)

	opts := service.Options{
		Classifier:       newClassifier(cfg.Classifier),
		Primary:          primary,
		Fallback:         fallback,
		SynthesisTimeout: cfg.TTS.Remote.Timeout,
		Transcriber:      newTranscriber(cfg.STT),
		Webhooks:         hooks,
		HistoryCapacity:  cfg.History.Capacity,
		MaxSessions:      cfg.Server.MaxSessions,
		IdleTimeout:      cfg.Server.SessionIdleTimeout,
	}
	if static != nil {
		opts.Catalog = static
	}
	archive := newArchive(cfg.History.Redis)
	if archive != nil {
		opts.Sink = archive
	}
	return service.New(opts), archive, nil
}
