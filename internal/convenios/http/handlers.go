package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/convenios/service"
)

func splitStatuses(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ListOwn lists the caller's agreements. ?status=borrador,revision filters.
func (h *Handler) ListOwn(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	items, err := h.convenios.ListOwn(c.Request.Context(), caller, splitStatuses(c.Query("status")))
	if err != nil {
		writeError(c, "convenios.list_own", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"convenios": items})
}

// ListAll lists every agreement for reviewers and admins
func (h *Handler) ListAll(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	f := domain.ListFilter{
		Statuses: splitStatuses(c.Query("status")),
		TypeID:   c.Query("type_id"),
		OwnerID:  c.Query("user_id"),
	}
	items, err := h.convenios.ListAll(c.Request.Context(), caller, f)
	if err != nil {
		writeError(c, "convenios.list_all", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"convenios": items})
}

// Create starts a new draft
func (h *Handler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req service.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	conv, err := h.convenios.Create(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, "convenios.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"convenio": conv})
}

func (h *Handler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	conv, err := h.convenios.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, "convenios.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"convenio": conv})
}

// UpdateForm merges one wizard step
func (h *Handler) UpdateForm(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req service.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	conv, err := h.convenios.UpdateForm(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		writeError(c, "convenios.update_form", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"convenio": conv})
}

// Submit sends a draft or corrected agreement for review
func (h *Handler) Submit(c *gin.Context) {
	h.apply(c, domain.ActionSubmit)
}

// RequestModification reopens an approved agreement
func (h *Handler) RequestModification(c *gin.Context) {
	h.apply(c, domain.ActionRequestModification)
}

// AdminAction applies approve, reject, correct or archive
func (h *Handler) AdminAction(c *gin.Context) {
	action, err := domain.ParseAction(strings.ReplaceAll(c.Param("action"), "-", "_"))
	if err != nil {
		writeError(c, "convenios.admin_action", err)
		return
	}
	h.apply(c, action)
}

func (h *Handler) apply(c *gin.Context, action domain.Action) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req actionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	res, err := h.workflow.Apply(c.Request.Context(), service.ApplyInput{
		ConvenioID: c.Param("id"),
		Action:     action,
		Caller:     caller,
		Comment:    req.text(),
	})
	if err != nil {
		writeError(c, "convenios.apply", err)
		return
	}

	body := gin.H{"convenio": res.Convenio}
	if len(res.Warnings) > 0 {
		body["warnings"] = res.Warnings
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) ListObservations(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	items, err := h.convenios.Observations(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, "convenios.list_observations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"observations": items})
}

func (h *Handler) ListActivity(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	items, err := h.convenios.Activity(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, "convenios.list_activity", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}

func (h *Handler) AddObservation(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.convenios.AddObservation(c.Request.Context(), caller, c.Param("id"), req.Content)
	if err != nil {
		writeError(c, "convenios.add_observation", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"observation": o})
}

func (h *Handler) ResolveObservation(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	o, err := h.convenios.ResolveObservation(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, "convenios.resolve_observation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"observation": o})
}

// CorrectionEmail re-sends the correction email for an agreement
func (h *Handler) CorrectionEmail(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req actionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if err := h.workflow.ResendCorrection(c.Request.Context(), caller, c.Param("id"), req.text()); err != nil {
		writeError(c, "convenios.correction_email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.convenios.ListTypes(c.Request.Context())
	if err != nil {
		writeError(c, "convenios.list_types", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agreement_types": types})
}

// LookupType answers {id, name} for a slugified type name
func (h *Handler) LookupType(c *gin.Context) {
	ref, err := h.convenios.LookupType(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, "convenios.lookup_type", err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *Handler) MigrateDraftsToSubmitted(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	report, err := h.migrations.DraftsToSubmitted(c.Request.Context(), caller)
	if err != nil {
		writeError(c, "convenios.migrate_drafts", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) MigrateLegacyFields(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	report, err := h.migrations.LegacyFields(c.Request.Context(), caller)
	if err != nil {
		writeError(c, "convenios.migrate_legacy", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
