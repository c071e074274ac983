package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/auth/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// GetMe returns the current user's identity and profile
func (h *Handler) GetMe(c *gin.Context) {
	firebaseUID := auth.UserFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	profile, err := h.profiles.GetProfile(c.Request.Context(), firebaseUID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		logger.New(c.Request.Context()).Error("auth.get_me", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    firebaseUID,
			"email": c.GetString(auth.CtxEmail),
		},
		"profile": profile,
	})
}

// UpdateMe changes the caller's display name
func (h *Handler) UpdateMe(c *gin.Context) {
	firebaseUID := auth.UserFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		FullName string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.profiles.UpdateFullName(c.Request.Context(), firebaseUID, req.FullName)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		if errors.Is(err, domain.ErrFullNameEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.New(c.Request.Context()).Error("auth.update_me", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
