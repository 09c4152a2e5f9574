package services

import (
	"errors"
	"fmt"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

const UserCacheDuration = time.Hour

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// FindUserByID resolves the user behind a token, cached in Redis.
func FindUserByID(userID uint) (models.User, error) {
	var user models.User
	if cacheGet(userCacheKey(userID), &user) {
		return user, nil
	}

	if err := database.DB.First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	cacheSet(userCacheKey(userID), user, UserCacheDuration)
	return user, nil
}

// EnsureAdmin creates the admin account when no user exists yet. It returns
// nil when users are already present.
func EnsureAdmin(username, password string) (*models.User, error) {
	var count int64
	if err := database.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	return createUser(database.DB, username, password, models.UserRoleAdmin)
}
