package auth

import (
	"errors"
	"net/http"
	"promptops-backend/internal/api/v1/common"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Register godoc
// @Summary Register a new user
// @Description Register a new user with a username and password. The first user becomes admin.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   input     body   RegisterInput  true  "Register Input"
// @Success 201 {object} utils.Response{data=AuthResponse}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/register [post]
func Register(c *gin.Context) {
	var input RegisterInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	u, err := services.RegisterUser(input.Username, input.Password)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	token, err := utils.GenerateToken(u.ID, u.Username, u.Role)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "Could not generate token")
		return
	}

	utils.Created(c, "User registered successfully", newAuthResponse(u, token))
}

// Login godoc
// @Summary Log in a user
// @Description Log in a user with a username and password
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   input     body   LoginInput  true  "Login Input"
// @Success 200 {object} utils.Response{data=AuthResponse}
// @Failure 400 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	token, u, err := services.LoginUser(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.Fail(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Logged in successfully", newAuthResponse(u, token))
}

// Logout godoc
// @Summary Log out a user
// @Description Invalidate the user's current token
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/logout [post]
func Logout(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, err.Error())
		return
	}

	ttl := utils.TokenTTL
	if claims, err := utils.ValidateToken(tokenString); err == nil {
		if remaining := claims.Expiry(); remaining > 0 {
			ttl = remaining
		}
	}

	if err := services.AddToDenylist(tokenString, ttl); err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Logged out successfully", nil)
}
