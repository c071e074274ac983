package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/notifications/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// Inbox is satisfied by *service.Notifier.
type Inbox interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type Handler struct {
	inbox Inbox
}

func New(inbox Inbox) *Handler {
	return &Handler{inbox: inbox}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.List)
	rg.POST("/notifications/:id/read", h.MarkRead)
}

// List returns the caller's notifications. ?unread=true filters to unread ones.
func (h *Handler) List(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := h.inbox.List(c.Request.Context(), uid, unreadOnly, limit)
	if err != nil {
		logger.New(c.Request.Context()).Error("notifications.list", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkRead flags one of the caller's notifications as read
func (h *Handler) MarkRead(c *gin.Context) {
	uid := auth.UserFirebaseUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	err := h.inbox.MarkRead(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		logger.New(c.Request.Context()).Error("notifications.mark_read", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
