package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"email-assistant/internal/model"
	"email-assistant/internal/pkg/jwtutil"
	"email-assistant/internal/transport/http/response"
)

const ContextUserKey = "current_user"

// UserFinder resolves a token subject into an active user record.
type UserFinder interface {
	FindActiveByLogin(login string) (*model.User, error)
}

// AuthUser verifies the bearer token and resolves its subject into the
// full user record, which it stores in the gin context. Every failure
// path answers the same generic 401: the cause is not surfaced.
func AuthUser(secret string, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			unauthorized(c)
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			unauthorized(c)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		subject, err := jwtutil.ParseSubject(secret, token)
		if err != nil {
			unauthorized(c)
			return
		}

		user, err := users.FindActiveByLogin(subject)
		if err != nil || user == nil {
			unauthorized(c)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser fetches the user stored by AuthUser.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	userAny, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := userAny.(*model.User)
	return user, ok
}

func unauthorized(c *gin.Context) {
	response.Error(c, 401, response.CodeUnauthorized, "user not authenticated")
	c.Abort()
}
