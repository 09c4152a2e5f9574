package database

import (
	"context"
	"fmt"
	"promptops-backend/config"
	"promptops-backend/pkg/logger"

	"github.com/avast/retry-go/v4"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisClient backs the version, category and user caches and the token
// denylist. Callers treat a nil client as caching disabled.
var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis pings Redis until it answers or the attempts run out. On
// failure RedisClient is left nil.
func ConnectRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
	})

	err := retry.Do(
		func() error { return client.Ping(Ctx).Err() },
		retry.Attempts(uint(max(cfg.ConnectAttempts, 1))),
		retry.Delay(cfg.ConnectDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Log.Warn("redis not ready, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect redis: %w", err)
	}

	RedisClient = client
	return nil
}

// Close releases the database pool and the Redis client.
func Close() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Log.Warn("closing redis", zap.Error(err))
		}
		RedisClient = nil
	}
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
