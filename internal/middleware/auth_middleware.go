package middleware

import (
	"context"
	"strings"

	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthRequired.
const (
	CallerKey = "caller"
	UserIDKey = "user_id"
)

// CallerResolver turns a bearer token into the caller identity.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, bearerToken string) (*services.Caller, error)
}

// AuthRequired middleware validates the bearer token and sets the caller
func AuthRequired(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.HandleError(c, utils.NewAuthenticationError("authorization header required"))
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.HandleError(c, utils.NewAuthenticationError("bearer token required"))
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			utils.HandleError(c, err)
			return
		}

		// Set user context
		c.Set(CallerKey, caller)
		c.Set(UserIDKey, caller.UserID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserIDKey, caller.UserID))

		c.Next()
	}
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			return
		}

		if !caller.IsAdmin() {
			utils.ErrorResponse(c, utils.HTTPStatus(utils.KindAuthorization), string(utils.KindAuthorization), "admin access required")
			return
		}

		c.Next()
	}
}

// GetCaller returns the caller set by AuthRequired.
func GetCaller(c *gin.Context) (*services.Caller, bool) {
	value, exists := c.Get(CallerKey)
	if !exists {
		return nil, false
	}
	caller, ok := value.(*services.Caller)
	return caller, ok && caller != nil
}
