package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"promptops-backend/internal/database"
	"time"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

var ErrDenylistUnavailable = errors.New("token denylist is unavailable")

// denylistKey stores a digest so raw tokens never land in Redis.
func denylistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return denylistPrefix + hex.EncodeToString(sum[:])
}

// AddToDenylist revokes a token until it would have expired anyway.
func AddToDenylist(token string, ttl time.Duration) error {
	if database.RedisClient == nil {
		return ErrDenylistUnavailable
	}
	return database.RedisClient.Set(database.Ctx, denylistKey(token), 1, ttl).Err()
}

// IsDenylisted reports whether a token was revoked. Without Redis no token
// can have been revoked.
func IsDenylisted(token string) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	err := database.RedisClient.Get(database.Ctx, denylistKey(token)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
