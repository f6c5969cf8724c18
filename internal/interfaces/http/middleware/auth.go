package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskfabric/backend/internal/domain/shared"
	"github.com/taskfabric/backend/internal/infrastructure/auth"
	"github.com/taskfabric/backend/internal/interfaces/http/dto"
)

// CallerKey is the gin context key under which the authenticated caller is stored
const CallerKey = "caller"

// Authenticate verifies the Bearer token and stores the caller identity in
// the request context. Identity is then passed explicitly to application
// services; nothing below the handler layer reads it from ambient state.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "authorization header must be a Bearer token")
			return
		}

		caller, err := tokens.Verify(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// GetCaller retrieves the authenticated caller stored by Authenticate
func GetCaller(c *gin.Context) (shared.Caller, bool) {
	value, ok := c.Get(CallerKey)
	if !ok {
		return shared.Caller{}, false
	}
	caller, ok := value.(shared.Caller)
	return caller, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
