package http

import "github.com/gin-gonic/gin"

// RegisterUser mounts routes available to every signed in user
func (h *Handler) RegisterUser(rg *gin.RouterGroup) {
	rg.GET("/convenios", h.ListOwn)
	rg.POST("/convenios", h.Create)
	rg.GET("/convenios/:id", h.Get)
	rg.PATCH("/convenios/:id", h.UpdateForm)
	rg.POST("/convenios/:id/submit", h.Submit)
	rg.POST("/convenios/:id/modification-request", h.RequestModification)
	rg.GET("/convenios/:id/observations", h.ListObservations)
	rg.GET("/convenios/:id/activity", h.ListActivity)

	rg.GET("/agreement-types", h.ListTypes)
	rg.GET("/agreement-types/lookup/:slug", h.LookupType)
}

// RegisterReviewer mounts the read-only review listing
func (h *Handler) RegisterReviewer(rg *gin.RouterGroup) {
	rg.GET("/convenios", h.ListAll)
}

// RegisterAdmin mounts the admin-only routes
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/convenios", h.ListAll)
	rg.POST("/convenios/:id/actions/:action", h.AdminAction)
	rg.POST("/convenios/:id/observations", h.AddObservation)
	rg.POST("/convenios/:id/correction-email", h.CorrectionEmail)
	rg.POST("/observations/:id/resolve", h.ResolveObservation)
	rg.POST("/migrations/draft-to-submitted", h.MigrateDraftsToSubmitted)
	rg.POST("/migrations/legacy-fields", h.MigrateLegacyFields)
}
