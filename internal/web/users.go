package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

func accountValues(a *models.Account) url.Values {
	return url.Values{
		"username":   {a.Username},
		"email":      {a.Email},
		"first_name": {a.FirstName},
		"last_name":  {a.LastName},
	}
}

func (h *Handler) avatarURL(a *models.Account) string {
	key := models.DefaultAvatar
	if a.Profile != nil && a.Profile.Avatar != "" {
		key = a.Profile.Avatar
	}
	if h.deps.AvatarURL == nil {
		return key
	}
	return h.deps.AvatarURL(key)
}

func (h *Handler) UserList(c *gin.Context) {
	accounts, err := h.deps.Accounts.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "user_list.html", gin.H{"Title": "Users", "Accounts": accounts})
}

func (h *Handler) UserDetail(c *gin.Context) {
	account, err := h.deps.Accounts.Get(c.Request.Context(), targetID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "user_detail.html", gin.H{
		"Title":     account.Username,
		"Account":   account,
		"AvatarURL": h.avatarURL(account),
	})
}

func (h *Handler) UserUpdateForm(c *gin.Context) {
	account, err := h.deps.Accounts.Get(c.Request.Context(), targetID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "user_form.html", gin.H{
		"Title":   "Edit " + account.Username,
		"Account": account,
		"Values":  accountValues(account),
	})
}

func (h *Handler) UserUpdate(c *gin.Context) {
	var in service.AccountInput
	if err := c.ShouldBind(&in); err != nil {
		h.render(c, http.StatusBadRequest, "user_form.html", gin.H{"Title": "Edit account", "Values": c.Request.PostForm})
		return
	}

	account, err := h.deps.Accounts.Update(c.Request.Context(), targetID(c), in)
	if errs, ok := validationErrors(err); ok {
		h.render(c, http.StatusOK, "user_form.html", gin.H{
			"Title":  "Edit account",
			"Values": c.Request.PostForm,
			"Errors": errs,
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.setFlash(c, "success", "User profile updated successfully!")
	c.Redirect(http.StatusFound, "/users/"+strconv.FormatUint(uint64(account.ID), 10)+"/")
}

func (h *Handler) UserDeleteConfirm(c *gin.Context) {
	account, err := h.deps.Accounts.Get(c.Request.Context(), targetID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "user_confirm_delete.html", gin.H{"Title": "Delete " + account.Username, "Account": account})
}

// UserDelete removes an account. Deleting your own account also ends the
// session.
func (h *Handler) UserDelete(c *gin.Context) {
	account, err := h.deps.Accounts.Delete(c.Request.Context(), targetID(c))
	if err != nil {
		if wantsJSON(c) {
			h.deleteFailed(c, err)
			return
		}
		h.fail(c, err)
		return
	}

	const message = "User deleted successfully!"
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": message, "deleted_id": account.ID})
		return
	}
	h.setFlash(c, "success", message)
	if middleware.GetPrincipal(c).AccountID == account.ID {
		h.endSession(c)
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.Redirect(http.StatusFound, "/users/")
}
