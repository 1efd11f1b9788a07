package config

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil, nil when no address is configured; callers treat that as "no cache".
func InitRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	val := strings.TrimSpace(cfg.RedisAddr)
	if val == "" {
		return nil, nil
	}

	var rdb *redis.Client
	if strings.HasPrefix(val, "redis://") || strings.HasPrefix(val, "rediss://") {
		opt, err := redis.ParseURL(val)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(opt)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: val})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
