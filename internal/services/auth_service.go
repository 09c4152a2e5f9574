package services

import (
	"errors"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"
	"promptops-backend/internal/utils"
	"promptops-backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RegisterUser creates an editor account. The first account becomes admin.
func RegisterUser(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var user *models.User
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUserAlreadyExists
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}
		role := models.UserRoleEditor
		if total == 0 {
			role = models.UserRoleAdmin
		}

		var err error
		user, err = createUser(tx, username, password, role)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.String("username", user.Username), zap.String("role", user.Role))
	return user, nil
}

// LoginUser checks the credentials and issues a token.
func LoginUser(username, password string) (string, *models.User, error) {
	var user models.User
	err := database.DB.Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if isNotFound(err) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func createUser(tx *gorm.DB, username, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Password: string(hash),
		Role:     role,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, duplicateAs(err, ErrUserAlreadyExists)
	}
	return user, nil
}
