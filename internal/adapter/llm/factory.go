package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvChatMode is the environment variable name for mode selection.
	EnvChatMode = "GOCHAT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// ClientConfig carries the per-vendor settings needed to build the real
// provider clients.
type ClientConfig struct {
	OpenAIBaseURL string
	OpenAIAPIKey  string
	GeminiBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
	Timeout       time.Duration
}

// NewRouterFromConfig builds the router with one client per provider.
// If GOCHAT_MODE=MOCK, both providers are backed by the mock client.
func NewRouterFromConfig(cfg ClientConfig) *Router {
	if os.Getenv(EnvChatMode) == ModeMock {
		log.Println("GOCHAT_MODE=MOCK detected, using mock LLM clients")
		mock := NewMockClient()
		return NewRouter(mock, mock)
	}

	openai := NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Timeout)
	gemini := NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout)
	return NewRouter(openai, gemini)
}
