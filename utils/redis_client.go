package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mediavault/mediavault/config"
)

var redisClient *redis.Client

// InitRedis connects the optional Redis cache. When no host is configured the
// client stays nil and every cache call becomes a no-op.
func InitRedis(cfg config.AppConfig) {
	if cfg.RedisHost == "" {
		return
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	// Ping to surface connectivity problems early; a failure is logged but
	// not fatal since the cache is best-effort.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil && Sugar != nil {
		Sugar.Warnf("redis ping failed, cache degraded: %v", err)
	}
}

// GetRedis returns the initialized Redis client, or nil when caching is off.
func GetRedis() *redis.Client {
	return redisClient
}
