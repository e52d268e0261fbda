package utils

import (
	"context"
	"log"
	"time"

	"fundilink/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient serves the general-purpose cache, including the
	// processed-callback fast path.
	CacheClient *redis.Client
	// AuthCacheClient is kept on its own DB so token churn never evicts
	// cache entries.
	AuthCacheClient *redis.Client
)

func newRedisClient(db int, label string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("redis %s unreachable: %v", label, err)
	}
	return client
}

// GetCacheClient returns the general-purpose cache client, connecting
// lazily on first use.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "cache")
	}
	return CacheClient
}

// GetAuthCacheClient returns the auth-token cache client.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "auth cache")
	}
	return AuthCacheClient
}

// InitRedis connects every Redis client up front so a bad address fails
// the boot instead of the first request.
func InitRedis() {
	GetCacheClient()
	GetAuthCacheClient()
}
