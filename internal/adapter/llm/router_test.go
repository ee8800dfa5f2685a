package llm

import (
	"context"
	"testing"

	"github.com/liuq93/gochat/internal/domain"
)

func TestRouterDispatch(t *testing.T) {
	openai := &stubCompleter{reply: "from openai"}
	gemini := &stubCompleter{reply: "from gemini"}
	router := NewRouter(openai, gemini)

	messages := []PromptMessage{{Role: domain.RoleUser, Content: "hi"}}

	reply, err := router.Complete(context.Background(), domain.ProviderOpenAI, messages)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "from openai" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	reply, err = router.Complete(context.Background(), domain.ProviderGemini, messages)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "from gemini" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if openai.calls != 1 || gemini.calls != 1 {
		t.Fatalf("unexpected call counts: openai=%d gemini=%d", openai.calls, gemini.calls)
	}
}

func TestRouterUnsupportedProvider(t *testing.T) {
	openai := &stubCompleter{reply: "x"}
	gemini := &stubCompleter{reply: "y"}
	router := NewRouter(openai, gemini)

	_, err := router.Complete(context.Background(), domain.Provider("claude"), []PromptMessage{{Role: domain.RoleUser, Content: "hi"}})
	if !IsKind(err, KindUnsupportedProvider) {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
	if openai.calls != 0 || gemini.calls != 0 {
		t.Fatalf("expected zero client calls, got openai=%d gemini=%d", openai.calls, gemini.calls)
	}
}

func TestRouterPropagatesError(t *testing.T) {
	wantErr := Errorf(KindRateLimit, "slow down")
	router := NewRouter(&stubCompleter{err: wantErr}, &stubCompleter{})

	_, err := router.Complete(context.Background(), domain.ProviderOpenAI, []PromptMessage{{Role: domain.RoleUser, Content: "hi"}})
	if err != wantErr {
		t.Fatalf("expected error propagated unchanged, got %v", err)
	}
}
