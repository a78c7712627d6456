package controllers

import (
	"errors"
	"net/http"

	"conference-review-api/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps workflow error kinds to HTTP statuses. Every
// rejected transition reaches the caller with a machine-readable code.
func respondServiceError(c *gin.Context, err error) {
	code := services.ErrorCode(err)
	if code == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := http.StatusConflict
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrPreconditionFailed):
		status = http.StatusPreconditionFailed
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return 0, false
	}
	userID, ok := value.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user context"})
		return 0, false
	}
	return userID, true
}
