package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cancerinfo/cms/config"
	"github.com/cancerinfo/cms/internal/api"
	"github.com/cancerinfo/cms/internal/database"
	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/media"
	"github.com/cancerinfo/cms/internal/metrics"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/service"
	"github.com/cancerinfo/cms/internal/web"
)

// Deps are the connections the server is built on. Redis is optional; without
// it the credential endpoints are not rate limited.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Media media.Store
	Log   *logger.Logger
}

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	http    *http.Server
	db      *gorm.DB
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New builds every service once and mounts the REST API, the HTML pages and
// the operational endpoints on one router.
func New(cfg *config.Config, deps Deps) *Server {
	log := deps.Log
	m := metrics.New()

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.Metrics(m),
		middleware.CORS(cfg.CORSOrigins),
	)

	db := deps.DB
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := service.NewAuthService(db, log, tokens)
	sessions := service.NewSessionService(db, log, cfg.SessionTTL)
	cancerTypes := service.NewCancerTypeService(db, log)
	categories := service.NewCauseCategoryService(db, log)
	preventions := service.NewPreventionService(db, log)
	treatments := service.NewTreatmentService(db, log)

	var avatarURL func(string) string
	var avatars service.AvatarStore
	if deps.Media != nil {
		avatars = deps.Media
		avatarURL = deps.Media.URL
	}

	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		limiter = middleware.NewCredentialRateLimiter(deps.Redis, cfg.RateLimitRequests, cfg.RateLimitWindow, log, m)
	}

	api.SetupAPI(router, api.Deps{
		Catalog: api.CatalogServices{
			CancerTypes: cancerTypes,
			Categories:  categories,
			Causes:      service.NewCauseService(db, log),
			Preventions: preventions,
			Treatments:  treatments,
		},
		Auth:      auth,
		Profiles:  service.NewProfileService(db, log, avatars),
		AvatarURL: avatarURL,
		Limiter:   limiter,
		Metrics:   m,
		Log:       log,
	})

	pages := web.New(web.Deps{
		CancerTypes:  cancerTypes,
		Categories:   categories,
		Preventions:  preventions,
		Treatments:   treatments,
		Accounts:     service.NewAccountService(db, log, avatars),
		Auth:         auth,
		Sessions:     sessions,
		AvatarURL:    avatarURL,
		Limiter:      limiter,
		Metrics:      m,
		CookieSecure: cfg.CookieSecure,
		Log:          log,
	})
	pages.RegisterRoutes(router)

	s := &Server{router: router, db: db, log: log, metrics: m}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(m.Handler()))
	if local, ok := deps.Media.(*media.LocalStore); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), local.Root)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
			return
		}
		pages.NotFound(c)
	})

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := database.HealthCheck(ctx, s.db); err != nil {
		s.log.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.log.Info("Starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
