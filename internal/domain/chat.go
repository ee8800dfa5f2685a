// Package domain defines the core domain models for the chat backend.
package domain

import "time"

// Provider identifies which LLM vendor handles a request.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single message in a chat session. Messages are append-only;
// once persisted they are never mutated.
type Message struct {
	MessageID string    `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Model     Provider  `json:"model"`
}

// Chat is a persisted conversation session owned by one user.
// Title is assigned at most once, on the first successful exchange,
// and never overwritten.
type Chat struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"-"`
	Title     *string   `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatSummary is the sidebar view of a chat: identity and timestamps only.
type ChatSummary struct {
	SessionID string    `json:"sessionId"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
