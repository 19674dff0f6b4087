package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/liefhq/injury-api/internal/model"
	"github.com/liefhq/injury-api/internal/service/auth"
)

const (
	// ContextSessionUser holds the *model.SessionUser for the request, when any.
	ContextSessionUser = "session_user"
	// SessionCookie is the cookie the identity provider sets after login.
	SessionCookie = "appSession"
)

// SessionMiddleware resolves the provider session for each request. The gate
// produces a user-or-anonymous state; route groups decide whether anonymous
// is acceptable.
type SessionMiddleware struct {
	authService *auth.Service
}

func NewSessionMiddleware(authService *auth.Service) *SessionMiddleware {
	return &SessionMiddleware{authService: authService}
}

// Resolve populates the session user in the context when a valid token is
// present. Anonymous requests pass through untouched.
func (m *SessionMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := m.authService.ValidateSession(c.Request.Context(), token)
		if err == nil {
			c.Set(ContextSessionUser, user)
		}
		c.Next()
	}
}

// RequireSession aborts with 401 unless Resolve found an authenticated user.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// SessionUser returns the authenticated user for the request, or nil.
func SessionUser(c *gin.Context) *model.SessionUser {
	if v, exists := c.Get(ContextSessionUser); exists {
		if user, ok := v.(*model.SessionUser); ok {
			return user
		}
	}
	return nil
}

func sessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}
