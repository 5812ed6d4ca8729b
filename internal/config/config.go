// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:""`

	// GeminiAPIKey is read once at startup and handed to the Gemini adapter.
	// Absence is reported on the first fetch, not here.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	// GeminiBaseURL overrides the API endpoint (local proxies, tests).
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
	// PromptsPath points to a YAML file overriding the embedded prompt texts.
	PromptsPath string `env:"PROMPTS_PATH"`

	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MaxFieldLength int           `env:"MAX_FIELD_LENGTH" envDefault:"2000"`

	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"ai-career-advisor"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`

	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	// Generation can take tens of seconds; the write timeout must cover it.
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		// API_KEY is accepted for deployments configured before GEMINI_API_KEY.
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}
	if cfg.MaxFieldLength <= 0 {
		return Config{}, fmt.Errorf("op=config.Load: MAX_FIELD_LENGTH must be positive, got %d", cfg.MaxFieldLength)
	}
	return cfg, nil
}

// HasCredential reports whether an API key was supplied.
func (c Config) HasCredential() bool { return strings.TrimSpace(c.GeminiAPIKey) != "" }

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
