package auth

import (
	"promptops-backend/internal/models"
	"promptops-backend/internal/utils"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login. ExpiresIn is in seconds.
type AuthResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

func newAuthResponse(u *models.User, token string) AuthResponse {
	return AuthResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Token:     token,
		ExpiresIn: int64(utils.TokenTTL.Seconds()),
	}
}
