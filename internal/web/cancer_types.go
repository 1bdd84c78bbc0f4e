package web

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

func cancerTypeValues(ct *models.CancerType) url.Values {
	return url.Values{
		"name":        {ct.Name},
		"description": {ct.Description},
		"symptoms":    {ct.Symptoms},
		"risk_level":  {string(ct.RiskLevel)},
	}
}

func (h *Handler) cancerTypeForm(c *gin.Context, status int, title string, values url.Values, errs map[string][]string) {
	h.render(c, status, "cancer_type_form.html", gin.H{
		"Title":  title,
		"Values": values,
		"Errors": errs,
		"Levels": models.Levels,
	})
}

func (h *Handler) CancerTypeList(c *gin.Context) {
	cancerTypes, err := h.deps.CancerTypes.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "cancer_type_list.html", gin.H{"Title": "Cancer types", "CancerTypes": cancerTypes})
}

func (h *Handler) CancerTypeDetail(c *gin.Context) {
	ct, err := h.deps.CancerTypes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "cancer_type_detail.html", gin.H{"Title": ct.Name, "CancerType": ct})
}

func (h *Handler) CancerTypeCreateForm(c *gin.Context) {
	values := url.Values{"risk_level": {string(models.LevelMedium)}}
	h.cancerTypeForm(c, http.StatusOK, "Add cancer type", values, nil)
}

func (h *Handler) CancerTypeCreate(c *gin.Context) {
	var in service.CancerTypeInput
	if err := c.ShouldBind(&in); err != nil {
		h.cancerTypeForm(c, http.StatusBadRequest, "Add cancer type", c.Request.PostForm, nil)
		return
	}

	_, err := h.deps.CancerTypes.Create(c.Request.Context(), in)
	if errs, ok := validationErrors(err); ok {
		h.cancerTypeForm(c, http.StatusOK, "Add cancer type", c.Request.PostForm, errs)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setFlash(c, "success", "Cancer type added successfully!")
	c.Redirect(http.StatusFound, "/cancer-types/")
}

func (h *Handler) CancerTypeUpdateForm(c *gin.Context) {
	ct, err := h.deps.CancerTypes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cancerTypeForm(c, http.StatusOK, "Edit "+ct.Name, cancerTypeValues(ct), nil)
}

func (h *Handler) CancerTypeUpdate(c *gin.Context) {
	slugValue := c.Param("slug")
	var in service.CancerTypeInput
	if err := c.ShouldBind(&in); err != nil {
		h.cancerTypeForm(c, http.StatusBadRequest, "Edit cancer type", c.Request.PostForm, nil)
		return
	}

	ct, err := h.deps.CancerTypes.Update(c.Request.Context(), slugValue, in, false)
	if errs, ok := validationErrors(err); ok {
		h.cancerTypeForm(c, http.StatusOK, "Edit cancer type", c.Request.PostForm, errs)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setFlash(c, "success", "Cancer type updated successfully!")
	c.Redirect(http.StatusFound, "/cancer-types/"+ct.Slug+"/")
}

func (h *Handler) CancerTypeDeleteConfirm(c *gin.Context) {
	ct, err := h.deps.CancerTypes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "cancer_type_confirm_delete.html", gin.H{"Title": "Delete " + ct.Name, "CancerType": ct})
}

// CancerTypeDelete answers script requests with JSON and form posts with a
// redirect.
func (h *Handler) CancerTypeDelete(c *gin.Context) {
	ct, err := h.deps.CancerTypes.Delete(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if wantsJSON(c) {
			h.deleteFailed(c, err)
			return
		}
		h.fail(c, err)
		return
	}

	const message = "Cancer type deleted successfully!"
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": message, "deleted_id": ct.ID})
		return
	}
	h.setFlash(c, "success", message)
	c.Redirect(http.StatusFound, "/cancer-types/")
}
