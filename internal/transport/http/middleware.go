package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/liuq93/gochat/internal/auth"
)

// claimsKey is the echo context key holding the verified identity.
const claimsKey = "auth.claims"

// RequireAuth verifies the bearer token and stores the identity on the
// request context.
func (h *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fail(c, http.StatusUnauthorized, "Unauthorized")
		}

		claims, err := h.svc.VerifyToken(token)
		if err != nil {
			if err == auth.ErrNoSecret {
				return fail(c, http.StatusInternalServerError, "JWT secret not configured")
			}
			return fail(c, http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(claimsKey, claims)
		return next(c)
	}
}

// currentClaims returns the identity stored by RequireAuth.
func currentClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}
