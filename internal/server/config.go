// Package server provides configuration helpers that define runtime defaults,
// environment loading and validation for the chat hub.
package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"

	"github.com/Tyrowin/presencehub/internal/telemetry"
)

const (
	defaultPort           = ":5000"
	defaultMaxMessageSize = 4096
	defaultBurst          = 10
	defaultRefillInterval = time.Second
	defaultSendBuffer     = 256
	defaultShutdown       = 10 * time.Second
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:5174"}

var validate = validator.New()

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `env:"RATE_LIMIT_BURST" validate:"gt=0"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" validate:"gt=0"`
}

// Config holds the hub configuration. Every field can be set from the
// environment; ALLOWED_ORIGINS is a comma separated list where "*" allows any
// origin.
type Config struct {
	Port            string        `env:"SERVER_PORT" validate:"required"`
	RawOrigins      string        `env:"ALLOWED_ORIGINS"`
	AllowedOrigins  []string      `validate:"dive,required"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE" validate:"gt=0"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig

	LogLevel      string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat     string `env:"LOG_FORMAT" validate:"oneof=json text"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" validate:"gte=0"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" validate:"gte=0"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" validate:"gte=0"`

	TelemetryDir      string        `env:"TELEMETRY_DIR"`
	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL" validate:"gt=0"`
}

func defaultConfig() Config {
	return Config{
		Port:            defaultPort,
		RawOrigins:      strings.Join(defaultOrigins, ","),
		MaxMessageSize:  defaultMaxMessageSize,
		SendBufferSize:  defaultSendBuffer,
		ShutdownTimeout: defaultShutdown,
		RateLimit: RateLimitConfig{
			Burst:          defaultBurst,
			RefillInterval: defaultRefillInterval,
		},
		LogLevel:          "info",
		LogFormat:         "json",
		LogMaxSizeMB:      10,
		LogMaxBackups:     3,
		LogMaxAgeDays:     28,
		TelemetryInterval: 10 * time.Second,
	}
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	cfg.AllowedOrigins = parseOrigins(cfg.RawOrigins)
	return &cfg
}

// LoadConfig overlays the given environment on the defaults and validates the
// result.
func LoadConfig(es env.EnvSet) (*Config, error) {
	cfg := defaultConfig()
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	cfg.AllowedOrigins = parseOrigins(cfg.RawOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfigFromEnv reads the process environment. Callers that want a .env
// file loaded do so beforehand.
func NewConfigFromEnv() (*Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return LoadConfig(es)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// withDefaults fills zero values so hand-built configs in tests stay usable.
func (c Config) withDefaults() Config {
	def := defaultConfig()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = def.SendBufferSize
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = def.RateLimit.Burst
	}
	if c.RateLimit.RefillInterval <= 0 {
		c.RateLimit.RefillInterval = def.RateLimit.RefillInterval
	}
	if c.AllowedOrigins == nil && c.RawOrigins != "" {
		c.AllowedOrigins = parseOrigins(c.RawOrigins)
	}
	return c
}

// LogConfig extracts the logging settings.
func (c *Config) LogConfig() telemetry.LogConfig {
	return telemetry.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}

// TelemetryConfig extracts the tracing and metrics settings.
func (c *Config) TelemetryConfig(version string) telemetry.Config {
	return telemetry.Config{
		ServiceName:    "presencehub",
		ServiceVersion: version,
		Dir:            c.TelemetryDir,
		Interval:       c.TelemetryInterval,
	}
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
