package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pavelkhrustalyov/energy-app-local/internal/domain/entity"
	"github.com/pavelkhrustalyov/energy-app-local/pkg/helpers"
)

// ProfileCache keeps public profile views in Redis. A nil cache is a no-op.
type ProfileCache struct {
	Redis  *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewProfileCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *ProfileCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProfileCache{Redis: rdb, TTL: ttl, Logger: orNop(logger)}
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (*entity.PublicUser, bool) {
	if c == nil {
		return nil, false
	}
	var u entity.PublicUser
	ok, err := helpers.RedisGetJSON(ctx, c.Redis, helpers.ProfileCacheKey(userID), &u)
	if err != nil {
		c.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &u, true
}

func (c *ProfileCache) Set(ctx context.Context, u *entity.PublicUser) {
	if c == nil || u == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, c.Redis, helpers.ProfileCacheKey(u.ID), u, c.TTL); err != nil {
		c.Logger.WithError(err).WithField("user_id", u.ID).Warn("profile cache write failed")
	}
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	if err := helpers.RedisDel(ctx, c.Redis, helpers.ProfileCacheKey(userID)); err != nil {
		c.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache invalidate failed")
	}
}
