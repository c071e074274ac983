package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/auth/domain"
)

// SessionCookie carries the Firebase ID token for browser navigations.
const SessionCookie = "__session"

// Authenticator is satisfied by *service.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, idToken string) (*domain.Profile, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and loads the caller's profile
func FirebaseAuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		profile, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		auth.SetProfile(c, profile)
		c.Next()
	}
}

// OptionalAuth loads the profile when a valid token is present and never aborts.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if profile, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				auth.SetProfile(c, profile)
			}
		}
		c.Next()
	}
}

// extractToken reads the Bearer token from the Authorization header, then the session cookie
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
