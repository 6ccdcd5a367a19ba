package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/classmood/moodgrid-api/internal/middleware"
	"github.com/classmood/moodgrid-api/internal/models"
)

// claimsFromContext returns the caller's claims, or nil for anonymous
// requests on routes using OptionalJWT.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	if value, exists := c.Get(middleware.ContextUserKey); exists {
		if claims, ok := value.(*models.JWTClaims); ok {
			return claims
		}
	}
	return nil
}
