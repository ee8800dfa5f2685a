package llm

import (
	"context"

	"github.com/liuq93/gochat/internal/domain"
)

// Router dispatches completion requests to the client matching a provider
// identifier. The provider set is closed; adding a vendor means adding a
// domain.Provider variant and a Completer implementation.
type Router struct {
	clients map[domain.Provider]Completer
}

// NewRouter creates a router over the two supported providers.
func NewRouter(openai, gemini Completer) *Router {
	return &Router{
		clients: map[domain.Provider]Completer{
			domain.ProviderOpenAI: openai,
			domain.ProviderGemini: gemini,
		},
	}
}

// Complete dispatches to the client for provider and propagates its result
// unchanged. An unknown provider fails before any network call.
func (r *Router) Complete(ctx context.Context, provider domain.Provider, messages []PromptMessage) (string, error) {
	client, ok := r.clients[provider]
	if !ok {
		return "", Errorf(KindUnsupportedProvider, "unsupported model %q, use %q or %q", string(provider), domain.ProviderOpenAI, domain.ProviderGemini)
	}
	return client.Complete(ctx, messages)
}
