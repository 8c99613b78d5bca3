package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/response"
)

// AllowPrivateIP bypasses the limiter for loopback and private addresses.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowAdmin bypasses the limiter for requests authenticated as admin.
// It must run after Auth.
func AllowAdmin() AllowFunc {
	return func(c *gin.Context) bool {
		return entity.Role(c.GetString(CtxUserRoleKey)).IsAdmin()
	}
}

// AnyOf bypasses when any of fns does.
func AnyOf(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, f := range fns {
			if f != nil && f(c) {
				return true
			}
		}
		return false
	}
}

// RequireAdmin rejects non-admin requests with 403. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !entity.Role(c.GetString(CtxUserRoleKey)).IsAdmin() {
			response.Error[any](c, http.StatusForbidden, "admin rights required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
