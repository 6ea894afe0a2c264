// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookhive_errors "github.com/bookhive/api/errors"
	logger "github.com/bookhive/api/logging"
	"github.com/bookhive/api/model"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetUserFromContext returns the authenticated user attached by the guard.
func GetUserFromContext(c *gin.Context) (*model.User, error) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, bookhive_errors.ErrUnauthorized
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil, bookhive_errors.ErrUnauthorized
	}
	return user, nil
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", bookhive_errors.ErrUnauthorized
	}
	return userID.(string), nil
}
