package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/metrics"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/service"
)

// Deps is everything the REST API needs. Services are built once by the
// server and shared with the HTML pages.
type Deps struct {
	Catalog   CatalogServices
	Auth      *service.AuthService
	Profiles  *service.ProfileService
	AvatarURL func(key string) string
	Limiter   *middleware.RateLimiter
	Metrics   *metrics.Metrics
	Log       *logger.Logger
}

// SetupAPI mounts the REST API under /api/v1. Every route accepts an
// optional bearer token.
func SetupAPI(router *gin.Engine, deps Deps) {
	v1 := router.Group("/api/v1", middleware.BearerAuth(deps.Auth))
	{
		NewAuthHandler(deps.Auth, deps.Limiter, deps.Metrics, deps.Log).RegisterRoutes(v1)
		NewProfileHandler(deps.Profiles, deps.AvatarURL, deps.Log).RegisterRoutes(v1)
		RegisterCatalogRoutes(v1, deps.Catalog, deps.Log)
	}
}
