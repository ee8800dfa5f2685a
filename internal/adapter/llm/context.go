package llm

import "github.com/liuq93/gochat/internal/domain"

// contextWindow bounds how many prior messages accompany a new message.
// A trailing window keeps token cost bounded on long-lived sessions at the
// cost of full-history fidelity.
const contextWindow = 10

// BuildContext produces the exact prompt list for a new user message: the
// trailing contextWindow messages of history, stripped down to role and
// content, followed by the new message as the final entry.
func BuildContext(history []domain.Message, newMessage string) []PromptMessage {
	start := len(history) - contextWindow
	if start < 0 {
		start = 0
	}

	prompt := make([]PromptMessage, 0, len(history)-start+1)
	for _, msg := range history[start:] {
		prompt = append(prompt, PromptMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	prompt = append(prompt, PromptMessage{
		Role:    domain.RoleUser,
		Content: newMessage,
	})
	return prompt
}
