// Package http provides the HTTP handlers for the chat backend.
package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/liuq93/gochat/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api")

	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", h.RequireAuth)
	authed.GET("/users/me", h.GetMe)
	authed.POST("/chat/message", h.SendMessage)
	authed.GET("/chat/history", h.GetChatHistory)
	authed.GET("/chat/sessions", h.ListSessions)
	authed.POST("/chat/session", h.CreateSession)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ok wraps a payload in the success envelope.
func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// fail wraps an error message in the failure envelope.
func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
