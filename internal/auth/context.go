package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth/domain"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxProfile     = "profile"
)

// UserFirebaseUID extracts the Firebase UID set by the auth middleware
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentProfile returns the profile loaded by the auth middleware, or nil.
func CurrentProfile(c *gin.Context) *domain.Profile {
	v, ok := c.Get(CtxProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Profile)
	return p
}

// SetProfile stores the authenticated profile on the request
func SetProfile(c *gin.Context, p *domain.Profile) {
	c.Set(CtxFirebaseUID, p.ID)
	c.Set(CtxEmail, p.Email)
	c.Set(CtxProfile, p)
}
