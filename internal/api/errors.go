package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/pagination"
	"github.com/cancerinfo/cms/internal/policy"
	"github.com/cancerinfo/cms/internal/service"
)

// respondError maps service, policy and pagination errors onto HTTP
// responses. Anything unrecognised is logged and reported as a 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var ve *service.ValidationError
	var fe *pagination.FieldError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ve.Fields)
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{fe.Field: []string{fe.Message}})
	case errors.Is(err, pagination.ErrInvalidPage):
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidCredentials.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
	case errors.Is(err, policy.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
	case errors.Is(err, policy.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
	default:
		log.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
}
