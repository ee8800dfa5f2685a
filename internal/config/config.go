// Package config provides configuration for the chat backend.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort    int
	FrontendURL string

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string
	JWTExpiry time.Duration

	// Providers
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string
	LLMTimeout    time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:      getEnvInt("PORT", 5000),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		DatabaseURL:   getEnv("DATABASE_URL", "file:gochat.db?cache=shared&mode=rwc"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiry:     time.Duration(getEnvInt("JWT_EXPIRES_IN_HOURS", 168)) * time.Hour,
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_API_BASE_URL", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL: getEnv("GEMINI_API_BASE_URL", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		LLMTimeout:    time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// WarnMissing logs the required settings that are absent. Missing provider
// keys do not stop the server; the corresponding calls fail with an
// authentication error instead.
func (c *Config) WarnMissing() {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		log.Printf("WARN: missing environment variables: %s; some features will not work", strings.Join(missing, ", "))
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
