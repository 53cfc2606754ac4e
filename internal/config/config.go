package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultGatewayURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel      = "google/gemini-3-flash-preview"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Upstream completion gateway
	AIGatewayURL     string
	AIModel          string
	AIHTTPTimeout    time.Duration
	AIRetryMax       int
	AIRetryBaseDelay time.Duration
	AIStrictEnums    bool

	CORSOrigins []string

	// Optional audit trail
	DatabaseURL string

	// Optional caller auth
	AuthJWTSecret    string
	AuthAllowedRoles []string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AIGatewayURL:     strings.TrimRight(getEnv("AI_GATEWAY_URL", DefaultGatewayURL), "/"),
		AIModel:          getEnv("AI_MODEL", DefaultModel),
		AIHTTPTimeout:    getEnvAsDuration("AI_HTTP_TIMEOUT", 0),
		AIRetryMax:       getEnvAsInt("AI_RETRY_MAX", 0),
		AIRetryBaseDelay: getEnvAsDuration("AI_RETRY_BASE_DELAY", 500*time.Millisecond),
		AIStrictEnums:    getEnvAsBool("AI_STRICT_ENUMS", true),
		CORSOrigins:      getEnvAsList("CORS_ORIGINS", []string{"*"}),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AuthJWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
		AuthAllowedRoles: getEnvAsList("AUTH_ALLOWED_ROLES", nil),
	}
}

// APIKey returns the gateway credential as currently set in the environment.
// It is looked up on every call so a rotated key is picked up without restart.
func APIKey() string {
	if key := strings.TrimSpace(os.Getenv("AI_GATEWAY_API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("LOVABLE_API_KEY"))
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
