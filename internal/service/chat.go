package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/liuq93/gochat/internal/adapter/llm"
	"github.com/liuq93/gochat/internal/domain"
	"github.com/liuq93/gochat/policy"
)

// PolicyError is returned when the request policy blocks a chat message
// before any provider call.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	if e.Reason == "" {
		return "request blocked by policy"
	}
	return "request blocked by policy: " + e.Reason
}

// SendResult is the outcome of one successful exchange.
type SendResult struct {
	SessionID string         `json:"sessionId"`
	Response  string         `json:"response"`
	Message   domain.Message `json:"message"`
}

// SendMessage runs one exchange: find or create the session, assemble the
// bounded context, dispatch to the provider, lazily generate a title, and
// persist the user/assistant message pair. A failed provider call persists
// nothing.
func (s *Service) SendMessage(ctx context.Context, userID, sessionID string, provider domain.Provider, message string) (*SendResult, error) {
	decision, reason, err := s.policyEngine.Evaluate(ctx, policy.ChatInput{
		UserID:        userID,
		Provider:      string(provider),
		MessageLength: len(message),
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if decision != "allow" {
		return nil, &PolicyError{Reason: reason}
	}

	chat, isNew, err := s.findOrCreateChat(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	// Bounded trailing window over the history preceding the new message.
	prompt := llm.BuildContext(chat.Messages, message)

	now := time.Now()
	chat.Messages = append(chat.Messages, domain.Message{
		MessageID: uuid.New().String(),
		Role:      domain.RoleUser,
		Content:   message,
		Timestamp: now,
		Model:     provider,
	})

	response, err := s.router.Complete(ctx, provider, prompt)
	if err != nil {
		return nil, err
	}

	// Title is assigned at most once, on the first successful exchange.
	// Failures here are non-fatal: the session proceeds titleless.
	if chat.Title == nil {
		title, err := llm.GenerateTitle(ctx, s.router, provider, chat.Messages)
		if err != nil {
			log.Printf("WARN: title generation failed for session %s: %v", chat.SessionID, err)
		} else if title != "" {
			chat.Title = &title
		}
	}

	assistant := domain.Message{
		MessageID: uuid.New().String(),
		Role:      domain.RoleAssistant,
		Content:   response,
		Timestamp: time.Now(),
		Model:     provider,
	}
	chat.Messages = append(chat.Messages, assistant)

	if isNew {
		chat.UpdatedAt = time.Now()
		err = s.store.CreateChat(ctx, chat)
	} else {
		err = s.store.SaveChat(ctx, chat, 2)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}

	return &SendResult{
		SessionID: chat.SessionID,
		Response:  response,
		Message:   assistant,
	}, nil
}

// findOrCreateChat loads the named session, or builds a fresh unsaved one
// when sessionID is absent or unknown. A client-supplied id is honored so
// the UI can show the session before the first exchange lands.
func (s *Service) findOrCreateChat(ctx context.Context, userID, sessionID string) (*domain.Chat, bool, error) {
	if sessionID != "" {
		chat, err := s.store.FindChat(ctx, userID, sessionID)
		if err != nil {
			return nil, false, err
		}
		if chat != nil {
			return chat, false, nil
		}
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	now := time.Now()
	return &domain.Chat{
		SessionID: sessionID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, true, nil
}

// History is the payload returned for a history lookup. A user without a
// matching session gets the zero History, not an error.
type History struct {
	SessionID *string          `json:"sessionId"`
	Title     *string          `json:"title"`
	Messages  []domain.Message `json:"messages"`
}

// GetHistory returns the named session, or the most recently updated one
// when sessionID is empty.
func (s *Service) GetHistory(ctx context.Context, userID, sessionID string) (*History, error) {
	var chat *domain.Chat
	var err error
	if sessionID != "" {
		chat, err = s.store.FindChat(ctx, userID, sessionID)
	} else {
		chat, err = s.store.LatestChat(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return &History{Messages: []domain.Message{}}, nil
	}
	messages := chat.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	return &History{
		SessionID: &chat.SessionID,
		Title:     chat.Title,
		Messages:  messages,
	}, nil
}

// listSessionsLimit caps the sidebar listing.
const listSessionsLimit = 50

// ListSessions returns the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	return s.store.ListChats(ctx, userID, listSessionsLimit)
}

// NewSession creates and persists an empty session.
func (s *Service) NewSession(ctx context.Context, userID string) (*domain.Chat, error) {
	now := time.Now()
	chat := &domain.Chat{
		SessionID: uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}
