package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

func (h *Handler) startSession(c *gin.Context, account *models.Account) error {
	session, err := h.deps.Sessions.Create(c.Request.Context(), account.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, session.Token, int(h.deps.Sessions.TTL().Seconds()), "/", "", h.deps.CookieSecure, true)
	return nil
}

func (h *Handler) LoginForm(c *gin.Context) {
	if middleware.CurrentAccount(c) != nil {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Next": c.Query("next")})
}

func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	next := c.PostForm("next")

	account, err := h.deps.Auth.Login(c.Request.Context(), username, c.PostForm("password"))
	h.deps.Metrics.AuthEvent("web_login", err == nil)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.log.Warn("Failed login", "username", username, "client_ip", c.ClientIP())
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title":  "Log in",
			"Next":   next,
			"Values": url.Values{"username": {username}},
			"Error":  "Please enter a correct username and password.",
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.startSession(c, account); err != nil {
		h.fail(c, err)
		return
	}
	h.setFlash(c, "success", "Welcome, "+account.Username+"!")
	c.Redirect(http.StatusFound, safeNext(next))
}

// LogoutForm asks for confirmation. Only a POST ends the session.
func (h *Handler) LogoutForm(c *gin.Context) {
	if middleware.CurrentAccount(c) == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, "logout.html", gin.H{"Title": "Log out"})
}

// Logout ends the session behind the cookie, if any.
func (h *Handler) Logout(c *gin.Context) {
	h.endSession(c)
	if _, err := c.Cookie(flashCookie); err != nil {
		h.setFlash(c, "info", "You have been logged out.")
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) endSession(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := h.deps.Sessions.Delete(c.Request.Context(), token); err != nil {
			h.log.Error("Failed to delete session", "error", err)
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.deps.CookieSecure, true)
}

func (h *Handler) RegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

// Register creates a regular account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBind(&in); err != nil {
		h.render(c, http.StatusBadRequest, "register.html", gin.H{"Title": "Register", "Values": c.Request.PostForm})
		return
	}
	in.Staff = false

	account, err := h.deps.Auth.Register(c.Request.Context(), in)
	h.deps.Metrics.AuthEvent("web_register", err == nil)
	if errs, ok := validationErrors(err); ok {
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title":  "Register",
			"Values": c.Request.PostForm,
			"Errors": errs,
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.startSession(c, account); err != nil {
		h.fail(c, err)
		return
	}
	h.setFlash(c, "success", "Your account has been created.")
	c.Redirect(http.StatusFound, "/")
}
