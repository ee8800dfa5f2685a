package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/liuq93/gochat/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user_updated ON chats(user_id, updated_at)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES chats(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser creates a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.UserID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

// GetUserByEmail retrieves a user by email, or nil when absent.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT user_id, name, email, password_hash, created_at, updated_at FROM users WHERE email = ?`, email)
}

// GetUserByID retrieves a user by id, or nil when absent.
func (s *SQLiteStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT user_id, name, email, password_hash, created_at, updated_at FROM users WHERE user_id = ?`, userID)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.UserID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateChat creates a new chat session, including any initial messages.
func (s *SQLiteStore) CreateChat(ctx context.Context, chat *domain.Chat) error {
	var title sql.NullString
	if chat.Title != nil {
		title = sql.NullString{String: *chat.Title, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (session_id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		chat.SessionID, chat.UserID, title, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return err
	}
	return s.insertMessages(ctx, chat.SessionID, 0, chat.Messages)
}

// FindChat retrieves one chat with its messages, or nil when absent.
func (s *SQLiteStore) FindChat(ctx context.Context, userID, sessionID string) (*domain.Chat, error) {
	return s.scanChat(ctx,
		`SELECT session_id, user_id, title, created_at, updated_at FROM chats WHERE user_id = ? AND session_id = ?`,
		userID, sessionID)
}

// LatestChat retrieves the most recently updated chat of a user, or nil
// when the user has none.
func (s *SQLiteStore) LatestChat(ctx context.Context, userID string) (*domain.Chat, error) {
	return s.scanChat(ctx,
		`SELECT session_id, user_id, title, created_at, updated_at FROM chats WHERE user_id = ? ORDER BY updated_at DESC LIMIT 1`,
		userID)
}

func (s *SQLiteStore) scanChat(ctx context.Context, query string, args ...interface{}) (*domain.Chat, error) {
	var chat domain.Chat
	var title sql.NullString
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&chat.SessionID, &chat.UserID, &title, &chat.CreatedAt, &chat.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if title.Valid {
		chat.Title = &title.String
	}

	messages, err := s.getMessages(ctx, chat.SessionID)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages
	return &chat, nil
}

func (s *SQLiteStore) getMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, role, content, model, created_at FROM chat_messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.MessageID, &msg.Role, &msg.Content, &msg.Model, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ListChats returns the user's chats, most recently updated first, without
// message bodies.
func (s *SQLiteStore) ListChats(ctx context.Context, userID string, limit int) ([]domain.ChatSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, title, created_at, updated_at FROM chats WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.ChatSummary
	for rows.Next() {
		var chat domain.ChatSummary
		var title sql.NullString
		if err := rows.Scan(&chat.SessionID, &title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		if title.Valid {
			chat.Title = &title.String
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// SaveChat appends the last newMessages entries of chat.Messages, writes
// the title if one has been assigned, and bumps updated_at.
func (s *SQLiteStore) SaveChat(ctx context.Context, chat *domain.Chat, newMessages int) error {
	var title sql.NullString
	if chat.Title != nil {
		title = sql.NullString{String: *chat.Title, Valid: true}
	}

	chat.UpdatedAt = time.Now()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, updated_at = ? WHERE session_id = ?`,
		title, chat.UpdatedAt, chat.SessionID); err != nil {
		return err
	}

	startSeq := len(chat.Messages) - newMessages
	return s.insertMessages(ctx, chat.SessionID, startSeq, chat.Messages[startSeq:])
}

func (s *SQLiteStore) insertMessages(ctx context.Context, sessionID string, startSeq int, messages []domain.Message) error {
	for i, msg := range messages {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO chat_messages (message_id, session_id, seq, role, content, model, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.MessageID, sessionID, startSeq+i, msg.Role, msg.Content, msg.Model, msg.Timestamp); err != nil {
			return err
		}
	}
	return nil
}
