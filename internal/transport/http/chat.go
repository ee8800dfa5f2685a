package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/liuq93/gochat/internal/adapter/llm"
	"github.com/liuq93/gochat/internal/domain"
	"github.com/liuq93/gochat/internal/service"
)

type sendMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Model     string `json:"model"`
}

// SendMessage runs one exchange and returns the assistant reply.
// POST /api/chat/message
func (h *Handler) SendMessage(c echo.Context) error {
	claims := currentClaims(c)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return fail(c, http.StatusBadRequest, "message is required")
	}
	if req.Model == "" {
		req.Model = string(domain.ProviderOpenAI)
	}
	provider := domain.Provider(req.Model)
	if !provider.Valid() {
		return fail(c, http.StatusBadRequest, `Invalid model. Use "openai" or "gemini"`)
	}

	result, err := h.svc.SendMessage(c.Request().Context(), claims.UserID, req.SessionID, provider, req.Message)
	if err != nil {
		log.Printf("ERROR: send message failed: %v", err)
		return fail(c, statusForSendError(err), err.Error())
	}
	return ok(c, result)
}

// statusForSendError maps chat failures onto HTTP statuses: client mistakes
// are 4xx, provider-side failures surface as bad gateway.
func statusForSendError(err error) int {
	var policyErr *service.PolicyError
	if errors.As(err, &policyErr) {
		return http.StatusBadRequest
	}
	if kind, ok := llm.KindOf(err); ok {
		switch kind {
		case llm.KindUnsupportedProvider:
			return http.StatusBadRequest
		case llm.KindRateLimit:
			return http.StatusTooManyRequests
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// GetChatHistory returns the named session, or the latest one.
// GET /api/chat/history
func (h *Handler) GetChatHistory(c echo.Context) error {
	claims := currentClaims(c)

	history, err := h.svc.GetHistory(c.Request().Context(), claims.UserID, c.QueryParam("sessionId"))
	if err != nil {
		log.Printf("ERROR: failed to get chat history: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to get chat history")
	}
	return ok(c, history)
}

// ListSessions returns the user's sessions for the sidebar.
// GET /api/chat/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	claims := currentClaims(c)

	chats, err := h.svc.ListSessions(c.Request().Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to list chats: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to list chats")
	}
	if chats == nil {
		chats = []domain.ChatSummary{}
	}
	return ok(c, map[string]interface{}{"chats": chats})
}

// CreateSession creates a new empty session.
// POST /api/chat/session
func (h *Handler) CreateSession(c echo.Context) error {
	claims := currentClaims(c)

	chat, err := h.svc.NewSession(c.Request().Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to create session: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to create session")
	}
	return ok(c, map[string]interface{}{
		"sessionId": chat.SessionID,
		"createdAt": chat.CreatedAt,
	})
}
