package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/pavelkhrustalyov/energy-app-local/internal/interface/http"
	"github.com/pavelkhrustalyov/energy-app-local/internal/interface/middleware"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// ProfileModule wires profile and avatar handlers.
// Protected: GET /api/me, GET|PATCH|DELETE /api/users/:userId,
// POST /api/users/:userId/avatar, GET /api/users/search
type ProfileModule struct {
	Profile *handlers.ProfileHandler
	Avatar  *handlers.AvatarHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewProfileModule(p *handlers.ProfileHandler, a *handlers.AvatarHandler, jwt *helpers.JWTManager, rdb *redis.Client) *ProfileModule {
	return &ProfileModule{Profile: p, Avatar: a, JWT: jwt, Redis: rdb}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), middleware.AllowAdmin()),
	)
	{
		auth.GET("/me", m.Profile.Me)
		auth.GET("/users/search", m.Profile.Search)
		auth.GET("/users/:userId", m.Profile.Get)
		auth.PATCH("/users/:userId", m.Profile.Update)
		auth.DELETE("/users/:userId", m.Profile.Delete)
	}

	// uploads are expensive; keep a tighter per-user budget
	uploadLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil)
	auth.POST("/users/:userId/avatar", uploadLimiter, m.Avatar.Upload)
}
