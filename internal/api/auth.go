package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/metrics"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/service"
)

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) validate() error {
	v := &service.ValidationError{}
	if r.Username == "" {
		v.Add("username", "This field is required.")
	}
	if r.Password == "" {
		v.Add("password", "This field is required.")
	}
	return v.Err()
}

type RefreshRequest struct {
	Refresh string `json:"refresh" form:"refresh"`
}

type AuthHandler struct {
	auth    *service.AuthService
	limiter *middleware.RateLimiter
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewAuthHandler(auth *service.AuthService, limiter *middleware.RateLimiter, m *metrics.Metrics, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, metrics: m, log: log.With("handler", "AuthHandler")}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	limit := h.limiter.ByClientIP()
	router.POST("/register/", limit, h.Register)
	router.POST("/login/", limit, h.Login)
	router.POST("/token/", limit, h.ObtainToken)
	router.POST("/token/refresh/", h.RefreshToken)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Staff = false

	account, err := h.auth.Register(c.Request.Context(), req)
	h.metrics.AuthEvent("register", err == nil)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    newUser(account),
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	account, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	h.metrics.AuthEvent("login", err == nil)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Warn("Failed login", "username", req.Username, "client_ip", c.ClientIP())
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    newUser(account),
		"message": "Login successful",
	})
}

func (h *AuthHandler) ObtainToken(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(c, h.log, err)
		return
	}

	pair, err := h.auth.IssueTokens(c.Request.Context(), req.Username, req.Password)
	h.metrics.AuthEvent("token", err == nil)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Refresh == "" {
		c.JSON(http.StatusBadRequest, gin.H{"refresh": []string{"This field is required."}})
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), req.Refresh)
	h.metrics.AuthEvent("refresh", err == nil)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}
