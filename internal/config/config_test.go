package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AI_PROVIDER", "GEMINI_API_KEY", "API_KEY", "RECIPE_MODEL", "IMAGE_MODEL",
		"OPENROUTER_API_KEY", "OPENROUTER_ENDPOINT", "ANTHROPIC_API_KEY",
		"GENERATION_TIMEOUT", "SESSION_TTL", "LISTEN_ADDR", "LOG_LEVEL",
		"LOGSINK_ACCOUNT", "LOGSINK_KEY", "LOGSINK_CONTAINER", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.RecipeModel)
	assert.Equal(t, "imagen-4.0-generate-001", cfg.AI.ImageModel)
	assert.Equal(t, 2*time.Minute, cfg.Generation.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Sessions.TTL)
	assert.False(t, cfg.Log.SinkEnabled())
	assert.False(t, cfg.Telemetry.Enabled())
}

func TestLoadMissingKeyIsFatal(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadAcceptsLegacyKeyName(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.AI.APIKey)
}

func TestLoadMockNeedsNoKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "mock")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, cfg.AI.Provider)
}

func TestLoadProviderCredentials(t *testing.T) {
	t.Run("openrouter without its key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_PROVIDER", "openrouter")
		t.Setenv("GEMINI_API_KEY", "key")

		_, err := Load()
		require.ErrorContains(t, err, "OPENROUTER_API_KEY")
	})

	t.Run("anthropic with both keys", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_PROVIDER", "Anthropic")
		t.Setenv("GEMINI_API_KEY", "key")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-5", cfg.AI.RecipeModel)
	})

	t.Run("unknown provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_PROVIDER", "ouija")
		t.Setenv("GEMINI_API_KEY", "key")

		_, err := Load()
		require.ErrorContains(t, err, "unknown AI_PROVIDER")
	})
}

func TestLoadDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GENERATION_TIMEOUT", "45s")
	t.Setenv("SESSION_TTL", "10m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.TTL)

	t.Setenv("GENERATION_TIMEOUT", "soon")
	_, err = Load()
	require.ErrorContains(t, err, "GENERATION_TIMEOUT")

	t.Setenv("GENERATION_TIMEOUT", "-1s")
	_, err = Load()
	require.ErrorContains(t, err, "must be positive")
}
