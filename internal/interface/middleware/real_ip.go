package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey holds the client address resolved by RealIP.
const CtxRealIPKey = "real_ip"

// proxyHeaders are consulted in order; X-Forwarded-For contributes its
// left-most entry.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

func firstIP(v string) string {
	first, _, _ := strings.Cut(v, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}

// RealIP stores the caller address for rate limiting and logs.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		for _, h := range proxyHeaders {
			if ip = firstIP(c.GetHeader(h)); ip != "" {
				break
			}
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIPKey, ip)
		c.Next()
	}
}
