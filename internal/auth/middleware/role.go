package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
)

// RequireRole aborts with 403 unless the authenticated profile holds one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		profile := auth.CurrentProfile(c)
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		if _, ok := roleSet[profile.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}
