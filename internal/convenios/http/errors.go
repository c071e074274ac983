package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// callerFrom builds the acting caller from the authenticated profile.
func callerFrom(c *gin.Context) (domain.Caller, bool) {
	p := auth.CurrentProfile(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return domain.Caller{}, false
	}
	return domain.Caller{ID: p.ID, Role: p.Role, IP: c.ClientIP()}, true
}

// writeError maps domain errors to status codes. Anything unknown is logged and hidden.
func writeError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrConvenioNotFound),
		errors.Is(err, domain.ErrTypeNotFound),
		errors.Is(err, domain.ErrObservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrObservationsRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidPrecondition),
		errors.Is(err, domain.ErrNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.New(c.Request.Context()).Error(operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
