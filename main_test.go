package main

import (
	"os"
	"testing"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("POSTGRES_URL", "postgres://localhost:5432/schema_designer")
	t.Setenv("DEMO_BUILDING_SCHEMA_ID", "bs-1")
}

func TestAppConfig_ProviderNeutralKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BUILD_AGENT_PROVIDER", "openai")
	t.Setenv("BUILD_AGENT_API_KEY", "sk-test")
	t.Setenv("BUILD_AGENT_BASE_URL", "https://llm.internal/v1")

	var cfg AppConfig
	require.NoError(t, envconfig.Process("", &cfg))
	assert.Equal(t, "openai", cfg.Build.Provider)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "https://llm.internal/v1", cfg.BaseURL)
}

func TestAppConfig_IgnoresGeminiKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	// registers a restore, then leaves the key unset
	t.Setenv("BUILD_AGENT_API_KEY", "unused")
	require.NoError(t, os.Unsetenv("BUILD_AGENT_API_KEY"))

	var cfg AppConfig
	err := envconfig.Process("", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUILD_AGENT_API_KEY")
}
