// Package llm provides the provider clients, the response router and the
// chat-context assembly logic for the supported LLM vendors.
package llm

import (
	"context"

	"github.com/liuq93/gochat/internal/domain"
)

// PromptMessage is the role+content pair submitted to a provider.
// Timestamps and model tags are stripped before a message leaves the
// process.
type PromptMessage struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// Completer is the single capability a provider client exposes: submit an
// ordered message list, get back the reply text. The call completes or
// fails; there are no partial results.
type Completer interface {
	Complete(ctx context.Context, messages []PromptMessage) (string, error)
}

// Ensure the provider clients implement Completer.
var (
	_ Completer = (*OpenAIClient)(nil)
	_ Completer = (*GeminiClient)(nil)
	_ Completer = (*MockClient)(nil)
)
