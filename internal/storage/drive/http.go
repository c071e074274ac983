package drive

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// Linker is satisfied by *OAuthService.
type Linker interface {
	ConnectURL(ctx context.Context, adminID string) (string, error)
	Callback(ctx context.Context, state, code string) (string, error)
}

type Handler struct {
	linker     Linker
	appBaseURL string
}

func NewHandler(linker Linker, appBaseURL string) *Handler {
	return &Handler{linker: linker, appBaseURL: strings.TrimRight(appBaseURL, "/")}
}

// RegisterAdmin mounts the connect endpoint on an admin-only group
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/storage/oauth/connect", h.Connect)
}

// RegisterPublic mounts the provider callback, which arrives without a session
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/storage/oauth/callback", h.Callback)
}

// Connect returns the consent URL, or redirects to it with ?redirect=true
func (h *Handler) Connect(c *gin.Context) {
	adminID := auth.UserFirebaseUID(c)
	if adminID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	url, err := h.linker.ConnectURL(c.Request.Context(), adminID)
	if err != nil {
		logger.New(c.Request.Context()).Error("storage.oauth_connect", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start storage authorization"})
		return
	}

	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, url)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback finishes the consent flow and sends the browser back to the app
func (h *Handler) Callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		logger.New(c.Request.Context()).Warnf("storage.oauth_callback", "provider error=%s", errParam)
		c.Redirect(http.StatusFound, h.appBaseURL+"/app/admin?storage=denied")
		return
	}

	adminID, err := h.linker.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired state"})
			return
		}
		logger.New(c.Request.Context()).Error("storage.oauth_callback", err)
		c.Redirect(http.StatusFound, h.appBaseURL+"/app/admin?storage=error")
		return
	}

	logger.New(c.Request.Context()).Infof("storage.oauth_callback", "admin_id=%s linked", adminID)
	c.Redirect(http.StatusFound, h.appBaseURL+"/app/admin?storage=connected")
}
