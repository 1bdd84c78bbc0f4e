package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/policy"
)

const (
	principalKey = "principal"
	userIDKey    = "user_id"
)

// TokenAuthenticator resolves a bearer token to a principal.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (policy.Principal, error)
}

// BearerAuth reads an optional "Authorization: Bearer <token>" header. A
// request without the header continues as anonymous; a malformed or invalid
// token is rejected with 401.
func BearerAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			setPrincipal(c, policy.Anonymous)
			c.Next()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		principal, err := auth.AuthenticateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Given token not valid for any token type"})
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401. It must run after
// BearerAuth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p policy.Principal) {
	c.Set(principalKey, p)
	if p.Authenticated {
		c.Set(userIDKey, p.AccountID)
	}
}

// GetPrincipal returns the caller of the request, anonymous if unknown.
func GetPrincipal(c *gin.Context) policy.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(policy.Principal); ok {
			return p
		}
	}
	return policy.Anonymous
}
