package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/perm-tracker-api/internal/middleware"
	appErrors "github.com/noah-isme/perm-tracker-api/pkg/errors"
	"github.com/noah-isme/perm-tracker-api/pkg/response"
)

// ownerID returns the authenticated user id, writing a 401 when absent.
func ownerID(c *gin.Context) (string, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.UserID, true
}
