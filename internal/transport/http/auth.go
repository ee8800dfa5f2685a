package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/liuq93/gochat/internal/service"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account.
// POST /api/auth/signup
func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(req.Name)); n < 2 || n > 80 {
		return fail(c, http.StatusBadRequest, "Name is required")
	}
	if !validEmail(req.Email) {
		return fail(c, http.StatusBadRequest, "Valid email is required")
	}
	if len(req.Password) < 6 {
		return fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
	}

	result, err := h.svc.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return fail(c, http.StatusConflict, "Email already in use")
		}
		log.Printf("ERROR: signup failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to signup")
	}
	return ok(c, result)
}

// Login verifies credentials and issues a token.
// POST /api/auth/login
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if !validEmail(req.Email) {
		return fail(c, http.StatusBadRequest, "Valid email is required")
	}
	if req.Password == "" {
		return fail(c, http.StatusBadRequest, "Password is required")
	}

	result, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		log.Printf("ERROR: login failed: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to login")
	}
	return ok(c, result)
}

// GetMe returns the authenticated user's profile.
// GET /api/users/me
func (h *Handler) GetMe(c echo.Context) error {
	claims := currentClaims(c)

	user, err := h.svc.GetUser(c.Request().Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to load profile: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to load profile")
	}
	if user == nil {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, map[string]interface{}{"user": user})
}

// validEmail is a shape check, not RFC validation: one @ with something on
// both sides and a dot in the domain.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}
