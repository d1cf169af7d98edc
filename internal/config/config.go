// Package config handles loading and validating the storevoice configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the storevoice daemon.
type Config struct {
	Server       ServerConfig                `mapstructure:"server"`
	Transports   TransportsConfig            `mapstructure:"transports"`
	Classifier   ClassifierConfig            `mapstructure:"classifier"`
	TTS          TTSConfig                   `mapstructure:"tts"`
	STT          STTConfig                   `mapstructure:"stt"`
	Catalog      CatalogConfig               `mapstructure:"catalog"`
	History      HistoryConfig               `mapstructure:"history"`
	Capabilities map[string]CapabilityConfig `mapstructure:"capabilities"`
	Logging      LoggingConfig               `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings and the limits on
// live sessions.
type ServerConfig struct {
	HealthPort         int           `mapstructure:"health_port"`
	MaxSessions        int           `mapstructure:"max_sessions"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ClassifierConfig selects the intent classifier.
type ClassifierConfig struct {
	Backend string                 `mapstructure:"backend"` // "remote" (falls back to local) or "local"
	Remote  RemoteClassifierConfig `mapstructure:"remote"`
}

// RemoteClassifierConfig points at a POST /classify endpoint.
type RemoteClassifierConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxProducts int           `mapstructure:"max_products"` // products sent per request
}

// TTSConfig configures speech output. Remote is tried first, Piper second.
type TTSConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Remote  RemoteTTSConfig `mapstructure:"remote"`
	Piper   PiperConfig     `mapstructure:"piper"`
}

// RemoteTTSConfig points at a POST /speech endpoint.
type RemoteTTSConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints; Endpoint is then the fallback.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`  // Default Wyoming TCP endpoint (host:port)
	Endpoints map[string]string `mapstructure:"endpoints"` // ISO-639-1 language code -> Wyoming TCP endpoint
	Voices    map[string]string `mapstructure:"voices"`    // ISO-639-1 language code -> Piper voice model name
}

// STTConfig holds Whisper-compatible transcription settings.
type STTConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Type      string `mapstructure:"type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	Language  string `mapstructure:"language"` // ISO-639-1 default language
	VADFilter bool   `mapstructure:"vad_filter"`
}

// CatalogConfig points at the YAML product catalog used for name lookups.
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

// HistoryConfig sizes the in-memory command log and its optional redis sink.
type HistoryConfig struct {
	Capacity int         `mapstructure:"capacity"`
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig configures the redis command log sink.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	MaxLen   int           `mapstructure:"max_len"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// CapabilityConfig binds a capability to an HTTP webhook.
type CapabilityConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// A .env file in the working directory is loaded first; it never overrides
// variables already set. If configFile is non-empty it is used directly;
// otherwise the standard search order applies: ./storevoice.yaml,
// ./configs/storevoice.yaml, /etc/storevoice/storevoice.yaml.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.session_idle_timeout", "30m")
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("classifier.backend", "local")
	v.SetDefault("classifier.remote.timeout", "3s")
	v.SetDefault("classifier.remote.max_products", 10)
	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.remote.timeout", "5s")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("stt.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("stt.type", "openai")
	v.SetDefault("stt.vad_filter", false)
	v.SetDefault("history.capacity", 50)
	v.SetDefault("history.redis.enabled", false)
	v.SetDefault("history.redis.addr", "localhost:6379")
	v.SetDefault("history.redis.prefix", "storevoice:history:")
	v.SetDefault("history.redis.max_len", 500)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("storevoice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/storevoice")
	}

	// Environment variables: STOREVOICE_SERVER_HEALTH_PORT, STOREVOICE_CLASSIFIER_BACKEND, etc.
	v.SetEnvPrefix("STOREVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional: env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${SPEECH_API_KEY}")
	cfg.TTS.Remote.APIKey = resolveEnvRef(cfg.TTS.Remote.APIKey)
	cfg.STT.APIKey = resolveEnvRef(cfg.STT.APIKey)
	cfg.History.Redis.Password = resolveEnvRef(cfg.History.Redis.Password)
	for name, c := range cfg.Capabilities {
		c.Token = resolveEnvRef(c.Token)
		cfg.Capabilities[name] = c
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the daemon cannot start with.
func (c *Config) Validate() error {
	switch c.Classifier.Backend {
	case "local":
	case "remote":
		if c.Classifier.Remote.Endpoint == "" {
			return errors.New("classifier.remote.endpoint is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown classifier backend %q", c.Classifier.Backend)
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive, got %d", c.Server.MaxSessions)
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	for name, cc := range c.Capabilities {
		if cc.Endpoint == "" {
			return fmt.Errorf("capability %q has no endpoint", name)
		}
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
