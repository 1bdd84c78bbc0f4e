package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/policy"
	"github.com/cancerinfo/cms/internal/service"
)

const (
	flashCookie = "flash"
	flashMaxAge = 300

	msgNoPermission = "You do not have permission to access this page!"
)

// signedIn admits any authenticated account.
func signedIn(p policy.Principal) error {
	if !p.Authenticated {
		return policy.ErrUnauthenticated
	}
	return nil
}

type flash struct {
	Level   string
	Message string
}

func (h *Handler) setFlash(c *gin.Context, level, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, level+":"+message, flashMaxAge, "/", "", h.deps.CookieSecure, true)
}

// popFlash reads the pending message and clears it.
func (h *Handler) popFlash(c *gin.Context) *flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", h.deps.CookieSecure, true)
	level, message, ok := strings.Cut(raw, ":")
	if !ok {
		return nil
	}
	return &flash{Level: level, Message: message}
}

// render executes a page template with the data every page shares.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.CurrentAccount(c)
	data["Flash"] = h.popFlash(c)
	if _, ok := data["Values"]; !ok {
		data["Values"] = url.Values{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string][]string{}
	}
	c.HTML(status, name, data)
}

// fail renders the 404 page for missing records and a bare 500 otherwise.
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.NotFound(c)
		return
	}
	h.log.Error("Page request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// deny sends anonymous callers to the login page and everyone else home
// with an error notice.
func (h *Handler) deny(c *gin.Context, err error) {
	if errors.Is(err, policy.ErrUnauthenticated) {
		c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	} else {
		h.setFlash(c, "error", msgNoPermission)
		c.Redirect(http.StatusFound, "/")
	}
	c.Abort()
}

func (h *Handler) guard(rule func(policy.Principal) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rule(middleware.GetPrincipal(c)); err != nil {
			h.deny(c, err)
			return
		}
		c.Next()
	}
}

// ownerOrAdmin guards the /users/:id/ pages.
func (h *Handler) ownerOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			h.NotFound(c)
			c.Abort()
			return
		}
		if err := policy.OwnerOrAdmin(middleware.GetPrincipal(c), uint(id)); err != nil {
			h.deny(c, err)
			return
		}
		c.Set("target_id", uint(id))
		c.Next()
	}
}

func targetID(c *gin.Context) uint {
	return c.GetUint("target_id")
}

// wantsJSON reports whether a delete came from script rather than a form.
func wantsJSON(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest" || c.ContentType() == "application/json"
}

// validationErrors extracts field messages for re-rendering a form.
func validationErrors(err error) (map[string][]string, bool) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}

// safeNext only follows local redirects.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *Handler) deleteFailed(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Not found."})
		return
	}
	h.log.Error("Delete failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal Server Error"})
}
