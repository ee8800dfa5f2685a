// Package repository provides persistence for users and chat sessions.
package repository

import (
	"context"

	"github.com/liuq93/gochat/internal/domain"
)

// Store is the persistence interface the services depend on. Lookups
// return nil (not an error) when nothing matches.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// Chats
	CreateChat(ctx context.Context, chat *domain.Chat) error
	FindChat(ctx context.Context, userID, sessionID string) (*domain.Chat, error)
	LatestChat(ctx context.Context, userID string) (*domain.Chat, error)
	ListChats(ctx context.Context, userID string, limit int) ([]domain.ChatSummary, error)
	// SaveChat persists the tail of chat.Messages (the last newMessages
	// entries), the title if one has been assigned, and bumps updated_at.
	SaveChat(ctx context.Context, chat *domain.Chat, newMessages int) error

	Close() error
}
