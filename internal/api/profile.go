package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/media"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

type ProfileHandler struct {
	profiles *service.ProfileService
	avatars  func(key string) string
	log      *logger.Logger
}

// NewProfileHandler builds the handler. avatarURL turns a stored avatar key
// into a public URL.
func NewProfileHandler(profiles *service.ProfileService, avatarURL func(string) string, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, avatars: avatarURL, log: log.With("handler", "ProfileHandler")}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile", middleware.RequireAuth())
	{
		profile.GET("/", h.GetProfile)
		profile.PUT("/", h.UpdateProfile)
		profile.PATCH("/", h.UpdateProfile)
		profile.PUT("/avatar/", h.UploadAvatar)
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), middleware.GetPrincipal(c).AccountID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.present(profile))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), middleware.GetPrincipal(c).AccountID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.present(profile))
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxUploadBytes+1<<20)
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"avatar": []string{"No file was submitted."}})
		return
	}
	f, err := file.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer f.Close()

	profile, err := h.profiles.SetAvatar(c.Request.Context(), middleware.GetPrincipal(c).AccountID, f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.present(profile))
}

func (h *ProfileHandler) present(p *models.Profile) ProfileResponse {
	out := ProfileResponse{
		ID:         p.ID,
		Avatar:     p.Avatar,
		Bio:        p.Bio,
		DateJoined: p.DateJoined,
	}
	if h.avatars != nil {
		out.Avatar = h.avatars(p.Avatar)
	}
	if p.Account != nil {
		out.Username = p.Account.Username
	}
	return out
}
