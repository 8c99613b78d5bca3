package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pavelkhrustalyov/energy-app-local/internal/interface/middleware"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// DebugModule exposes expvar counters to admins.
type DebugModule struct {
	JWT   *helpers.JWTManager
	Redis *redis.Client
}

func NewDebugModule(jwt *helpers.JWTManager, rdb *redis.Client) *DebugModule {
	return &DebugModule{JWT: jwt, Redis: rdb}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars",
		rl,
		middleware.Auth(m.Redis, m.JWT),
		middleware.RequireAdmin(),
		gin.WrapH(expvar.Handler()),
	)
}
