package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUserRoleKey = "userRole"
)

// accessToken reads the access_token cookie, falling back to a Bearer header.
func accessToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Auth validates the access token and, when Redis is configured, requires
// a live session written by the account service. The session role wins over
// the token role. It sets userID and userRole in the Gin context.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		role := claims.Role
		if rdb != nil {
			data, err := rdb.HGetAll(c.Request.Context(), helpers.SessionKey(claims.UserID)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				response.Error[any](c, http.StatusServiceUnavailable, "session store unavailable", nil)
				c.Abort()
				return
			}
			if len(data) == 0 || (claims.SessionID != "" && data["sid"] != "" && data["sid"] != claims.SessionID) {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
			if r := data["role"]; r != "" {
				role = r
			}
		}
		if role == "" {
			role = string(entity.RoleUser)
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserRoleKey, role)
		c.Next()
	}
}

// RequesterFrom returns the identity set by Auth.
func RequesterFrom(c *gin.Context) (id string, role entity.Role) {
	return c.GetString(CtxUserIDKey), entity.Role(c.GetString(CtxUserRoleKey))
}
