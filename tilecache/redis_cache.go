package tilecache

import (
	"context"
	"errors"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/redis/go-redis/v9"
)

var _ Cache = &RedisCache{}

// RedisCache shares rendered tiles between server instances
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to a redis server. A ttl of 0 keeps tiles until redis evicts them.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, errorsx.Error) {
	if addr == "" {
		return nil, errorsx.Errorf("redis address is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	err := rdb.Ping(ctx).Err()
	if err != nil {
		_ = rdb.Close()
		return nil, errorsx.Wrap(err, "addr", addr)
	}

	return &RedisCache{rdb, ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, errorsx.Error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errorsx.Wrap(err, "key", key)
	}

	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) errorsx.Error {
	err := c.rdb.Set(ctx, key, data, c.ttl).Err()
	if err != nil {
		return errorsx.Wrap(err, "key", key)
	}
	return nil
}

func (c *RedisCache) Close() errorsx.Error {
	return errorsx.Wrap(c.rdb.Close())
}
