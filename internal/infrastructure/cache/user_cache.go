package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

const userKeyPrefix = "user:public:"

// UserCache stores public user views in Redis as JSON.
type UserCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewUserCache(rdb redis.Cmdable, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func userKey(id string) string { return userKeyPrefix + id }

func (c *UserCache) Get(ctx context.Context, id string) (*entity.PublicUser, bool, error) {
	var u entity.PublicUser
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, userKey(id), &u)
	if err != nil || !ok {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *UserCache) Set(ctx context.Context, u entity.PublicUser) error {
	return helpers.RedisSetJSON(ctx, c.rdb, userKey(u.ID), u, c.ttl)
}
