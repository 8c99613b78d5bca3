package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/pavelkhrustalyov/energy-app-local/internal/interface/http"
	"github.com/pavelkhrustalyov/energy-app-local/internal/interface/middleware"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// WallModule wires wall post routes.
// Protected: GET /api/wall/:recipientId, POST /api/wall/:authorId/:recipientId
type WallModule struct {
	Handler *handlers.WallHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewWallModule(h *handlers.WallHandler, jwt *helpers.JWTManager, rdb *redis.Client) *WallModule {
	return &WallModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *WallModule) Register(rg *gin.RouterGroup) {
	wall := rg.Group("/wall")
	wall.Use(middleware.Auth(m.Redis, m.JWT))

	postLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByUserID(), middleware.AllowAdmin())
	wall.GET("/:recipientId", m.Handler.List)
	wall.POST("/:authorId/:recipientId", postLimiter, m.Handler.Create)
}
