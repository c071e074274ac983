package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
)

// BoundaryRules describes which page paths anonymous visitors may reach.
type BoundaryRules struct {
	// Public paths are reachable without a session.
	Public []string
	// AuthPages are sign-in/sign-up pages; signed-in users are sent to Home.
	AuthPages []string
	// Landing is the public home page; signed-in users are sent to Home.
	Landing string
	SignIn    string
	Home      string
	// APIPrefix requests are left to the API auth middleware.
	APIPrefix string
}

func DefaultBoundaryRules() BoundaryRules {
	return BoundaryRules{
		Public:    []string{"/", "/health", "/healthz", "/api/v1/storage/oauth/callback"},
		AuthPages: []string{"/sign-in", "/sign-up"},
		Landing:   "/",
		SignIn:    "/sign-in",
		Home:      "/app",
		APIPrefix: "/api/",
	}
}

// Decide returns the redirect target for a page request, or "" to let it through.
func (r BoundaryRules) Decide(path string, authenticated bool) string {
	if r.Landing != "" && path == r.Landing && authenticated {
		return r.Home
	}
	if matchesAny(path, r.AuthPages) {
		if authenticated {
			return r.Home
		}
		return ""
	}
	if matchesAny(path, r.Public) {
		return ""
	}
	if r.APIPrefix != "" && strings.HasPrefix(path, r.APIPrefix) {
		return ""
	}
	if !authenticated {
		return r.SignIn
	}
	return ""
}

// SessionBoundary applies BoundaryRules to every request. It must run after OptionalAuth.
func SessionBoundary(rules BoundaryRules) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := rules.Decide(c.Request.URL.Path, auth.CurrentProfile(c) != nil)
		if target != "" {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

func matchesAny(path string, paths []string) bool {
	for _, p := range paths {
		if p == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
