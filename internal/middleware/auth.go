package middleware

import (
	"context"
	"strings"

	"store-ratings/internal/apperr"
	"store-ratings/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionTokenKey is where login stores the access token for browser clients.
const SessionTokenKey = "token"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Principal, error)
}

// RequireAuth accepts "Authorization: Bearer <token>" first and falls back to
// the token kept in the cookie session.
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if v, ok := sessions.Default(c).Get(SessionTokenKey).(string); ok {
				token = v
			}
		}
		if token == "" {
			AbortWithError(c, apperr.Unauthorized("No token provided"))
			return
		}

		p, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

// RequireRole rejects callers whose role may not run op, before the handler
// binds any input.
func RequireRole(op service.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Authorize(CurrentPrincipal(c), op); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
