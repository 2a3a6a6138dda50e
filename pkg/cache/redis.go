package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vperfumes/tracker/config"
)

type redisDriver struct {
	rdb *redis.Client
	ctx context.Context
}

// newRedisDriver builds the Redis driver when REDIS_ADDR is set. Returns
// (nil, nil) when Redis is not configured.
func newRedisDriver() (*redisDriver, error) {
	addr := config.RedisAddr()
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword(),
		DB:       0,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &redisDriver{rdb: rdb, ctx: ctx}, nil
}

func (r *redisDriver) Get(key string, dest interface{}) bool {
	val, err := r.rdb.Get(r.ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (r *redisDriver) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(r.ctx, key, data, ttl).Err()
}

func (r *redisDriver) Forget(keys ...string) error {
	return r.rdb.Del(r.ctx, keys...).Err()
}
