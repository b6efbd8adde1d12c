package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderMock       = "mock"
)

// ErrMissingAPIKey is returned by Load when no model credential is configured.
var ErrMissingAPIKey = errors.New("API_KEY environment variable is not set")

type Config struct {
	Addr       string           `json:"addr"`
	AI         AIConfig         `json:"ai"`
	Generation GenerationConfig `json:"generation"`
	Sessions   SessionConfig    `json:"sessions"`
	Log        LogConfig        `json:"log"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
}

type AIConfig struct {
	Provider    string `json:"provider"` // recipe text backend: gemini, openrouter, anthropic or mock
	APIKey      string `json:"api_key"`  // gemini key, always used for images
	RecipeModel string `json:"recipe_model"`
	ImageModel  string `json:"image_model"`

	OpenRouterAPIKey   string `json:"openrouter_api_key"`
	OpenRouterEndpoint string `json:"openrouter_endpoint"`
	AnthropicAPIKey    string `json:"anthropic_api_key"`
}

type GenerationConfig struct {
	Timeout time.Duration `json:"timeout"`
}

type SessionConfig struct {
	TTL time.Duration `json:"ttl"`
}

type LogConfig struct {
	Level string `json:"level"`

	SinkAccount   string `json:"sink_account"`
	SinkKey       string `json:"sink_key"`
	SinkContainer string `json:"sink_container"`
}

// SinkEnabled reports whether logs should also be appended to blob storage.
func (l LogConfig) SinkEnabled() bool {
	return l.SinkAccount != "" && l.SinkContainer != ""
}

type TelemetryConfig struct {
	OTLPEndpoint string `json:"otlp_endpoint"`
	ServiceName  string `json:"service_name"`
}

func (t TelemetryConfig) Enabled() bool {
	return t.OTLPEndpoint != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini))
	config := &Config{
		Addr: getEnvOrDefault("LISTEN_ADDR", ":8080"),
		AI: AIConfig{
			Provider:           provider,
			APIKey:             getEnvOrDefault("GEMINI_API_KEY", os.Getenv("API_KEY")),
			RecipeModel:        getEnvOrDefault("RECIPE_MODEL", defaultRecipeModel(provider)),
			ImageModel:         getEnvOrDefault("IMAGE_MODEL", "imagen-4.0-generate-001"),
			OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
			OpenRouterEndpoint: getEnvOrDefault("OPENROUTER_ENDPOINT", "https://openrouter.ai/api/v1"),
			AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		},
		Log: LogConfig{
			Level:         getEnvOrDefault("LOG_LEVEL", "info"),
			SinkAccount:   os.Getenv("LOGSINK_ACCOUNT"),
			SinkKey:       os.Getenv("LOGSINK_KEY"),
			SinkContainer: os.Getenv("LOGSINK_CONTAINER"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "recipegen"),
		},
	}

	var err error
	if config.Generation.Timeout, err = getDurationOrDefault("GENERATION_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if config.Sessions.TTL, err = getDurationOrDefault("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the credentials for the selected provider are present.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini:
	case ProviderOpenRouter:
		if c.AI.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for provider %s", c.AI.Provider)
		}
	case ProviderAnthropic:
		if c.AI.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %s", c.AI.Provider)
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}
	// images always come from gemini
	if c.AI.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func defaultRecipeModel(provider string) string {
	switch provider {
	case ProviderOpenRouter:
		return "google/gemini-2.5-flash"
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	default:
		return "gemini-2.5-flash"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, value)
	}
	return d, nil
}
