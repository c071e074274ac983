package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/unicoop/convenios-backend/internal/api/http"
	"github.com/unicoop/convenios-backend/internal/api/http/middleware"
	authdomain "github.com/unicoop/convenios-backend/internal/auth/domain"
	authhttp "github.com/unicoop/convenios-backend/internal/auth/http"
	authmw "github.com/unicoop/convenios-backend/internal/auth/middleware"
	convhttp "github.com/unicoop/convenios-backend/internal/convenios/http"
	dochttp "github.com/unicoop/convenios-backend/internal/documents/http"
	notifhttp "github.com/unicoop/convenios-backend/internal/notifications/http"
	"github.com/unicoop/convenios-backend/internal/storage/drive"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	AppBaseURL     string
	DB             httpapi.Pinger
	Services       *Services
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id", "X-Warnings"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	svc := dep.Services
	r.Use(authmw.OptionalAuth(svc.Auth))
	r.Use(authmw.SessionBoundary(authmw.DefaultBoundaryRules()))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	storageHandler := drive.NewHandler(svc.OAuth, dep.AppBaseURL)
	storageHandler.RegisterPublic(r.Group("/api/v1"))

	api := r.Group("/api/v1")
	api.Use(authmw.FirebaseAuthMiddleware(svc.Auth))

	convenios := convhttp.New(svc.Convenios, svc.Workflow, svc.Migrations)
	authhttp.New(svc.Auth).Register(api)
	convenios.RegisterUser(api)
	dochttp.New(svc.Documents).Register(api)
	notifhttp.New(svc.Notifier).Register(api)

	review := api.Group("/review")
	review.Use(authmw.RequireRole(authdomain.RoleAdmin, authdomain.RoleReviewer))
	convenios.RegisterReviewer(review)

	admin := api.Group("/admin")
	admin.Use(authmw.RequireRole(authdomain.RoleAdmin))
	convenios.RegisterAdmin(admin)
	storageHandler.RegisterAdmin(admin)

	return r
}
