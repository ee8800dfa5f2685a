package llm

import (
	"context"
	"strings"

	"github.com/liuq93/gochat/internal/domain"
)

const (
	// FallbackTitle is used whenever a title cannot be generated.
	FallbackTitle = "New Chat"

	maxTitleLen       = 80
	titleSourceLimit  = 3
	titleSystemPrompt = "You generate concise chat titles."
	titleInstruction  = "Create a short title (max 6 words, no quotes, no emoji). Base it on:\n"
)

// GenerateTitle derives a short session title from the first user messages
// of history, dispatching a two-entry prompt through the router. When the
// history holds no user text, it returns FallbackTitle without any provider
// call. Errors are returned to the caller; swallowing them is the caller's
// policy.
func GenerateTitle(ctx context.Context, router *Router, provider domain.Provider, history []domain.Message) (string, error) {
	var parts []string
	for _, msg := range history {
		if msg.Role != domain.RoleUser {
			continue
		}
		if text := strings.TrimSpace(msg.Content); text != "" {
			parts = append(parts, text)
		}
		if len(parts) == titleSourceLimit {
			break
		}
	}

	userText := strings.Join(parts, "\n")
	if userText == "" {
		return FallbackTitle, nil
	}

	prompt := []PromptMessage{
		{Role: domain.RoleSystem, Content: titleSystemPrompt},
		{Role: domain.RoleUser, Content: titleInstruction + userText},
	}

	raw, err := router.Complete(ctx, provider, prompt)
	if err != nil {
		return "", err
	}

	title := sanitizeTitle(raw)
	if title == "" {
		return FallbackTitle, nil
	}
	return title, nil
}

// sanitizeTitle strips surrounding quotes, collapses whitespace runs and
// caps the result at maxTitleLen characters.
func sanitizeTitle(raw string) string {
	title := strings.Trim(raw, "\"'`")
	title = strings.Join(strings.Fields(title), " ")
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen])
	}
	return title
}
