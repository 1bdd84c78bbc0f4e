// Package web serves the server-rendered pages: browsing the catalog,
// editing cancer types and managing accounts behind a session login.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/metrics"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/policy"
	"github.com/cancerinfo/cms/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps is everything the pages need. The services are the same instances
// the REST API uses.
type Deps struct {
	CancerTypes *service.CancerTypeService
	Categories  *service.CauseCategoryService
	Preventions *service.PreventionService
	Treatments  *service.TreatmentService
	Accounts    *service.AccountService
	Auth        *service.AuthService
	Sessions    *service.SessionService

	AvatarURL    func(key string) string
	Limiter      *middleware.RateLimiter
	Metrics      *metrics.Metrics
	CookieSecure bool
	Log          *logger.Logger
}

type Handler struct {
	deps Deps
	log  *logger.Logger
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps, log: deps.Log.With("handler", "web")}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").ParseFS(templateFS, "templates/*.html")
}

// RegisterRoutes installs the page templates on the engine and mounts every
// page behind the session middleware.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(Templates()))

	pages := router.Group("/", middleware.SessionAuth(h.deps.Sessions, h.log))
	limit := h.deps.Limiter.ByClientIP()

	pages.GET("/", h.Home)
	pages.GET("/about/", h.About)
	pages.GET("/causes/", h.CauseList)
	pages.GET("/preventions/", h.PreventionList)
	pages.GET("/treatments/", h.TreatmentList)

	pages.GET("/login/", h.LoginForm)
	pages.POST("/login/", limit, h.Login)
	pages.GET("/logout/", h.LogoutForm)
	pages.POST("/logout/", h.Logout)
	pages.GET("/register/", h.RegisterForm)
	pages.POST("/register/", limit, h.Register)

	cancerTypes := pages.Group("/cancer-types")
	{
		edit := h.guard(policy.AuthenticatedWrite)
		cancerTypes.GET("/", h.CancerTypeList)
		cancerTypes.GET("/new/", edit, h.CancerTypeCreateForm)
		cancerTypes.POST("/new/", edit, h.CancerTypeCreate)
		cancerTypes.GET("/:slug/", h.CancerTypeDetail)
		cancerTypes.GET("/:slug/update/", edit, h.CancerTypeUpdateForm)
		cancerTypes.POST("/:slug/update/", edit, h.CancerTypeUpdate)
		cancerTypes.GET("/:slug/delete/", edit, h.CancerTypeDeleteConfirm)
		cancerTypes.POST("/:slug/delete/", edit, h.CancerTypeDelete)
	}

	users := pages.Group("/users", h.guard(signedIn))
	{
		users.GET("/", h.guard(policy.StaffOnly), h.UserList)
		users.GET("/:id/", h.ownerOrAdmin(), h.UserDetail)
		users.GET("/:id/update/", h.ownerOrAdmin(), h.UserUpdateForm)
		users.POST("/:id/update/", h.ownerOrAdmin(), h.UserUpdate)
		users.GET("/:id/delete/", h.ownerOrAdmin(), h.UserDeleteConfirm)
		users.POST("/:id/delete/", h.ownerOrAdmin(), h.UserDelete)
	}
}

// NotFound renders the 404 page for unknown page routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{"Title": "Not found"})
}
