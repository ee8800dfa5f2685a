package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/liuq93/gochat/internal/adapter/llm"
	"github.com/liuq93/gochat/internal/auth"
	"github.com/liuq93/gochat/internal/config"
	"github.com/liuq93/gochat/internal/domain"
	"github.com/liuq93/gochat/internal/repository"
	"github.com/liuq93/gochat/internal/service"
	"github.com/liuq93/gochat/policy"
	"github.com/liuq93/gochat/tests/helpers"
)

// fakeCompleter answers chat prompts with reply and title prompts (those
// starting with a system instruction) with titleReply.
type fakeCompleter struct {
	reply      string
	err        error
	titleReply string
	titleErr   error

	chatCalls  int
	titleCalls int
	lastPrompt []llm.PromptMessage
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.PromptMessage) (string, error) {
	if len(messages) > 0 && messages[0].Role == domain.RoleSystem {
		f.titleCalls++
		if f.titleErr != nil {
			return "", f.titleErr
		}
		return f.titleReply, nil
	}
	f.chatCalls++
	f.lastPrompt = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(t *testing.T, fake *fakeCompleter) (*service.Service, repository.Store) {
	t.Helper()

	store := helpers.NewTestSQLiteStore(t)
	router := llm.NewRouter(fake, fake)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	return service.New(store, router, tokens, &config.Config{}, engine), store
}

func TestSendMessageNewSession(t *testing.T) {
	fake := &fakeCompleter{reply: "hello back", titleReply: `"Greetings"`}
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "u1", "", domain.ProviderOpenAI, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.SessionID == "" || result.Response != "hello back" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Message.Role != domain.RoleAssistant || result.Message.Model != domain.ProviderOpenAI {
		t.Fatalf("unexpected assistant message: %+v", result.Message)
	}

	// Empty history: the provider sees exactly the new message.
	if len(fake.lastPrompt) != 1 || fake.lastPrompt[0].Content != "Hello" {
		t.Fatalf("unexpected prompt: %+v", fake.lastPrompt)
	}

	chat, err := store.FindChat(ctx, "u1", result.SessionID)
	if err != nil {
		t.Fatalf("FindChat failed: %v", err)
	}
	if chat == nil {
		t.Fatalf("expected chat persisted")
	}
	if len(chat.Messages) != 2 {
		t.Fatalf("expected user+assistant pair, got %d messages", len(chat.Messages))
	}
	if chat.Messages[0].Role != domain.RoleUser || chat.Messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", chat.Messages)
	}
	if chat.Title == nil || *chat.Title != "Greetings" {
		t.Fatalf("expected sanitized title, got %+v", chat.Title)
	}
}

func TestSendMessageHonorsClientSessionID(t *testing.T) {
	fake := &fakeCompleter{reply: "ok", titleReply: "T"}
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "u1", "client-chosen", domain.ProviderGemini, "Hi")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if result.SessionID != "client-chosen" {
		t.Fatalf("expected client session id, got %q", result.SessionID)
	}
	chat, _ := store.FindChat(ctx, "u1", "client-chosen")
	if chat == nil {
		t.Fatalf("expected chat persisted under client id")
	}
}

func TestSendMessageBoundedContext(t *testing.T) {
	fake := &fakeCompleter{reply: "ok", titleReply: "T"}
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	// 6 exchanges make 12 prior messages.
	var sessionID string
	for i := 0; i < 6; i++ {
		result, err := svc.SendMessage(ctx, "u1", sessionID, domain.ProviderOpenAI, fmt.Sprintf("msg %d", i))
		if err != nil {
			t.Fatalf("SendMessage %d failed: %v", i, err)
		}
		sessionID = result.SessionID
	}

	if _, err := svc.SendMessage(ctx, "u1", sessionID, domain.ProviderOpenAI, "Continue"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(fake.lastPrompt) != 11 {
		t.Fatalf("expected trailing 10 + new message, got %d entries", len(fake.lastPrompt))
	}
	if last := fake.lastPrompt[10]; last.Role != domain.RoleUser || last.Content != "Continue" {
		t.Fatalf("unexpected final entry: %+v", last)
	}
}

func TestSendMessageProviderFailurePersistsNothing(t *testing.T) {
	fake := &fakeCompleter{err: llm.Errorf(llm.KindRateLimit, "slow down")}
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", "s1", domain.ProviderOpenAI, "Hello")
	if !llm.IsKind(err, llm.KindRateLimit) {
		t.Fatalf("expected rate limit error, got %v", err)
	}

	chat, err := store.FindChat(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("FindChat failed: %v", err)
	}
	if chat != nil {
		t.Fatalf("expected nothing persisted, got %+v", chat)
	}
}

func TestSendMessageTitleFailureIsSwallowed(t *testing.T) {
	fake := &fakeCompleter{reply: "hello back", titleErr: llm.Errorf(llm.KindUnavailable, "down")}
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "u1", "", domain.ProviderOpenAI, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	chat, err := store.FindChat(ctx, "u1", result.SessionID)
	if err != nil {
		t.Fatalf("FindChat failed: %v", err)
	}
	if chat == nil || len(chat.Messages) != 2 {
		t.Fatalf("expected exchange persisted despite title failure: %+v", chat)
	}
	if chat.Title != nil {
		t.Fatalf("expected titleless session, got %q", *chat.Title)
	}
}

func TestSendMessageTitleAssignedOnce(t *testing.T) {
	fake := &fakeCompleter{reply: "ok", titleReply: "First Title"}
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "u1", "", domain.ProviderOpenAI, "Hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	fake.titleReply = "Second Title"
	if _, err := svc.SendMessage(ctx, "u1", result.SessionID, domain.ProviderOpenAI, "More"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if fake.titleCalls != 1 {
		t.Fatalf("expected a single title call, got %d", fake.titleCalls)
	}
	chat, _ := store.FindChat(ctx, "u1", result.SessionID)
	if chat.Title == nil || *chat.Title != "First Title" {
		t.Fatalf("expected title kept, got %+v", chat.Title)
	}
}

func TestSendMessageBlockedByPolicy(t *testing.T) {
	fake := &fakeCompleter{reply: "should not be called"}
	svc, _ := newTestService(t, fake)

	_, err := svc.SendMessage(context.Background(), "u1", "", domain.Provider("claude"), "Hello")
	var policyErr *service.PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected policy error, got %v", err)
	}
	if fake.chatCalls != 0 || fake.titleCalls != 0 {
		t.Fatalf("expected zero provider calls, got chat=%d title=%d", fake.chatCalls, fake.titleCalls)
	}
}

func TestGetHistory(t *testing.T) {
	fake := &fakeCompleter{reply: "ok", titleReply: "T"}
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	// No sessions yet: empty payload, not an error.
	history, err := svc.GetHistory(ctx, "u1", "")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if history.SessionID != nil || len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}

	first, err := svc.SendMessage(ctx, "u1", "", domain.ProviderOpenAI, "first chat")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	second, err := svc.SendMessage(ctx, "u1", "", domain.ProviderOpenAI, "second chat")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Without a session id the most recently updated chat is returned.
	history, err = svc.GetHistory(ctx, "u1", "")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if history.SessionID == nil || *history.SessionID != second.SessionID {
		t.Fatalf("expected latest session, got %+v", history.SessionID)
	}

	history, err = svc.GetHistory(ctx, "u1", first.SessionID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if history.SessionID == nil || *history.SessionID != first.SessionID || len(history.Messages) != 2 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestNewSessionAndListSessions(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	chat, err := svc.NewSession(ctx, "u1")
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if chat.SessionID == "" || chat.Title != nil || len(chat.Messages) != 0 {
		t.Fatalf("expected empty untitled session, got %+v", chat)
	}

	sessions, err := svc.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != chat.SessionID {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}
