package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const featuredCount = 5

func (h *Handler) Home(c *gin.Context) {
	featured, err := h.deps.CancerTypes.Featured(c.Request.Context(), featuredCount)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Title": "Home", "CancerTypes": featured})
}

func (h *Handler) About(c *gin.Context) {
	h.render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}

// CauseList shows every cause grouped under its category.
func (h *Handler) CauseList(c *gin.Context) {
	categories, err := h.deps.Categories.WithCauses(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "cause_list.html", gin.H{"Title": "Causes", "Categories": categories})
}

func (h *Handler) PreventionList(c *gin.Context) {
	preventions, err := h.deps.Preventions.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "prevention_list.html", gin.H{"Title": "Prevention", "Preventions": preventions})
}

func (h *Handler) TreatmentList(c *gin.Context) {
	treatments, err := h.deps.Treatments.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "treatment_list.html", gin.H{"Title": "Treatment", "Treatments": treatments})
}
