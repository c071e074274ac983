package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/auth"
	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/documents/assembler"
	"github.com/unicoop/convenios-backend/internal/documents/service"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
)

// Generator is satisfied by *service.Generator.
type Generator interface {
	Generate(ctx context.Context, caller domain.Caller, req service.Request) (*service.Result, error)
}

type Handler struct {
	generator Generator
}

func New(generator Generator) *Handler {
	return &Handler{generator: generator}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/documents/generate", h.Generate)
}

type generateResponse struct {
	File     string   `json:"file"`
	FileName string   `json:"fileName"`
	Strategy string   `json:"strategy"`
	Warnings []string `json:"warnings,omitempty"`
}

// Generate renders a document. A stored document answers with a pointer to
// it; otherwise, or with ?download=true, the bytes are sent as an attachment.
func (h *Handler) Generate(c *gin.Context) {
	p := auth.CurrentProfile(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req service.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	caller := domain.Caller{ID: p.ID, Role: p.Role, IP: c.ClientIP()}
	res, err := h.generator.Generate(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}

	art := res.Artifact
	if res.FileURL != "" && c.Query("download") != "true" {
		c.JSON(http.StatusOK, generateResponse{
			File:     res.FileURL,
			FileName: art.FileName,
			Strategy: art.Strategy,
			Warnings: res.Warnings,
		})
		return
	}

	if len(res.Warnings) > 0 {
		c.Header("X-Warnings", strings.Join(res.Warnings, ","))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	c.Data(http.StatusOK, art.ContentType, art.Content)
}

func writeError(c *gin.Context, err error) {
	var missing *assembler.MissingTagsError
	switch {
	case errors.Is(err, domain.ErrConvenioNotFound),
		errors.Is(err, domain.ErrTypeNotFound),
		errors.Is(err, assembler.ErrNoTemplate):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &missing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "tags": missing.Tags})
	default:
		logger.New(c.Request.Context()).Error("documents.generate", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate document"})
	}
}
