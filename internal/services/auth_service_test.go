package services

import (
	"testing"
	"time"

	"promptops-backend/internal/models"
	"promptops-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserRoles(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	first, err := RegisterUser("alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, first.Role)
	assert.NotEqual(t, "password1", first.Password)

	second, err := RegisterUser("bob", "password2")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleEditor, second.Role)

	_, err = RegisterUser("alice", "other")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginUser(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()
	t.Setenv("JWT_SECRET", "login-secret")

	_, err := RegisterUser("alice", "password1")
	require.NoError(t, err)

	token, user, err := LoginUser("alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, _, err = LoginUser("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = LoginUser("nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFindUserByIDCached(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	created, err := RegisterUser("carol", "password1")
	require.NoError(t, err)

	user, err := FindUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.True(t, mr.Exists(userCacheKey(created.ID)))

	_, err = FindUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	admin, err := EnsureAdmin("admin", "secret")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.UserRoleAdmin, admin.Role)

	again, err := EnsureAdmin("admin", "secret")
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestTokenDenylist(t *testing.T) {
	mr := setupTestRedis()
	defer mr.Close()

	denied, err := IsDenylisted("token-a")
	require.NoError(t, err)
	assert.False(t, denied)

	require.NoError(t, AddToDenylist("token-a", time.Minute))
	denied, err = IsDenylisted("token-a")
	require.NoError(t, err)
	assert.True(t, denied)

	mr.FastForward(2 * time.Minute)
	denied, err = IsDenylisted("token-a")
	require.NoError(t, err)
	assert.False(t, denied)
}
