package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/liuq93/gochat/internal/auth"
	"github.com/liuq93/gochat/internal/domain"
)

// ErrEmailTaken is returned when signing up with an email that already has
// an account.
var ErrEmailTaken = errors.New("email already in use")

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords, so login failures do not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthResult is a freshly minted token plus the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Signup registers a new account and returns a signed token for it.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		UserID:       uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GetUser loads one account by id, or nil when absent.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

// VerifyToken validates a bearer token and returns the identity it carries.
func (s *Service) VerifyToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issueToken(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Sign(auth.Claims{
		UserID: user.UserID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
