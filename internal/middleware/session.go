package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "sessionid"

const accountKey = "account"

// SessionLookup resolves a session token to its account.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*models.Account, error)
}

// SessionAuth attaches the account behind the session cookie, if any. Stale
// cookies are cleared.
func SessionAuth(sessions SessionLookup, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			setPrincipal(c, service.PrincipalOf(nil))
			c.Next()
			return
		}

		account, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrNotFound) {
				log.Error("Session lookup failed", "error", err)
			}
			c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
			setPrincipal(c, service.PrincipalOf(nil))
			c.Next()
			return
		}

		c.Set(accountKey, account)
		setPrincipal(c, service.PrincipalOf(account))
		c.Next()
	}
}

// CurrentAccount returns the signed-in account of a page request, or nil.
func CurrentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(accountKey); ok {
		if a, ok := v.(*models.Account); ok {
			return a
		}
	}
	return nil
}
