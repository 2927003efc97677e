package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/auth"
	"github.com/utpal74/track-my-tasks-api/service"
)

const unauthenticatedMessage = "Could not validate credentials"

// respondError writes the HTTP answer for err and aborts the chain.
// Unexpected errors are attached to the gin context for the request logger
// and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		c.Header("WWW-Authenticate", "Bearer")
		status, message = http.StatusUnauthorized, unauthenticatedMessage
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrEmailTaken):
		status, message = http.StatusBadRequest, "Email already registered"
	case errors.Is(err, service.ErrUsernameTaken):
		status, message = http.StatusBadRequest, "Username already taken"
	case errors.Is(err, auth.ErrPasswordTooLong):
		status, message = http.StatusBadRequest, "Password is too long"
	case errors.Is(err, service.ErrTaskNotFound):
		status, message = http.StatusNotFound, "Task not found"
	case errors.Is(err, service.ErrCategoryNotFound):
		status, message = http.StatusNotFound, "Category not found"
	case errors.Is(err, service.ErrTaskExists):
		status, message = http.StatusConflict, "Task id already exists"
	case errors.Is(err, service.ErrInvalidTaskID):
		status, message = http.StatusBadRequest, "Task id must not contain '/'"
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}
