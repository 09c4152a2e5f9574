package services

import (
	"encoding/json"
	"promptops-backend/internal/database"
	"promptops-backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// Cache durations, overridden from config at startup.
var (
	VersionCacheDuration    = 30 * time.Minute
	CategoriesCacheDuration = 1 * time.Hour
)

// SetCacheDurations applies configured TTLs. Zero values keep the defaults.
func SetCacheDurations(version, categories time.Duration) {
	if version > 0 {
		VersionCacheDuration = version
	}
	if categories > 0 {
		CategoriesCacheDuration = categories
	}
}

// cacheGet decodes the cached value into dst. It reports false on a miss,
// a Redis error or an undecodable value.
func cacheGet(key string, dst interface{}) bool {
	if database.RedisClient == nil {
		return false
	}
	val, err := database.RedisClient.Get(database.Ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dst) == nil
}

func cacheSet(key string, value interface{}, ttl time.Duration) {
	if database.RedisClient == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := database.RedisClient.Set(database.Ctx, key, data, ttl).Err(); err != nil {
		logger.Log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func cacheDel(keys ...string) {
	if database.RedisClient == nil || len(keys) == 0 {
		return
	}
	if err := database.RedisClient.Del(database.Ctx, keys...).Err(); err != nil {
		logger.Log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
