package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "AI_GATEWAY_URL", "AI_MODEL", "AI_HTTP_TIMEOUT",
		"AI_RETRY_MAX", "AI_RETRY_BASE_DELAY", "AI_STRICT_ENUMS", "CORS_ORIGINS",
		"DATABASE_URL", "AUTH_JWT_SECRET", "AUTH_ALLOWED_ROLES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultGatewayURL, cfg.AIGatewayURL)
	assert.Equal(t, DefaultModel, cfg.AIModel)
	assert.Zero(t, cfg.AIHTTPTimeout)
	assert.Zero(t, cfg.AIRetryMax)
	assert.Equal(t, 500*time.Millisecond, cfg.AIRetryBaseDelay)
	assert.True(t, cfg.AIStrictEnums)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.AuthAllowedRoles)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("AI_GATEWAY_URL", "http://localhost:4000/v1/")
	t.Setenv("AI_HTTP_TIMEOUT", "30s")
	t.Setenv("AI_RETRY_MAX", "3")
	t.Setenv("AI_STRICT_ENUMS", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("AUTH_ALLOWED_ROLES", "doctor,admin")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:4000/v1", cfg.AIGatewayURL)
	assert.Equal(t, 30*time.Second, cfg.AIHTTPTimeout)
	assert.Equal(t, 3, cfg.AIRetryMax)
	assert.False(t, cfg.AIStrictEnums)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"doctor", "admin"}, cfg.AuthAllowedRoles)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("AI_RETRY_MAX", "many")
	t.Setenv("AI_RETRY_BASE_DELAY", "soon")
	t.Setenv("AI_STRICT_ENUMS", "maybe")

	cfg := Load()

	assert.Zero(t, cfg.AIRetryMax)
	assert.Equal(t, 500*time.Millisecond, cfg.AIRetryBaseDelay)
	assert.True(t, cfg.AIStrictEnums)
}

func TestAPIKey(t *testing.T) {
	t.Setenv("AI_GATEWAY_API_KEY", "")
	t.Setenv("LOVABLE_API_KEY", "")
	assert.Empty(t, APIKey())

	t.Setenv("LOVABLE_API_KEY", " legacy ")
	assert.Equal(t, "legacy", APIKey())

	t.Setenv("AI_GATEWAY_API_KEY", "primary")
	assert.Equal(t, "primary", APIKey())
}
