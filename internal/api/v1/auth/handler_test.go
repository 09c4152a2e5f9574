package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"promptops-backend/internal/api/v1/auth"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) *miniredis.Miniredis {
	t.Setenv("JWT_SECRET", "auth-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	db.Migrator().DropTable(&models.User{})
	require.NoError(t, db.AutoMigrate(&models.User{}))
	database.DB = db

	mr, err := miniredis.Run()
	require.NoError(t, err)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr
}

func post(handler gin.HandlerFunc, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	raw, _ := json.Marshal(body)
	c.Request = httptest.NewRequest("POST", "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	if token != "" {
		c.Request.Header.Set("Authorization", "Bearer "+token)
	}
	handler(c)
	return w
}

func TestRegisterLoginLogout(t *testing.T) {
	mr := setupTest(t)
	defer mr.Close()

	w := post(auth.Register, auth.RegisterInput{Username: "alice", Password: "password1"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var registered struct {
		Data auth.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, models.UserRoleAdmin, registered.Data.Role)
	assert.NotEmpty(t, registered.Data.Token)
	assert.Equal(t, int64(utils.TokenTTL.Seconds()), registered.Data.ExpiresIn)

	w = post(auth.Register, auth.RegisterInput{Username: "alice", Password: "password1"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(auth.Login, auth.LoginInput{Username: "alice", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(auth.Login, auth.LoginInput{Username: "alice", Password: "password1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn struct {
		Data auth.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))

	w = post(auth.Logout, nil, loggedIn.Data.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	denied, err := services.IsDenylisted(loggedIn.Data.Token)
	require.NoError(t, err)
	assert.True(t, denied)

	w = post(auth.Logout, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	mr := setupTest(t)
	defer mr.Close()

	w := post(auth.Register, auth.RegisterInput{Username: "al", Password: "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
