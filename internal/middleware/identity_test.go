package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func setupIdentityTest(t *testing.T) (*miniredis.Miniredis, *gin.Engine) {
	t.Setenv("JWT_SECRET", "identity-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	db.Migrator().DropTable(&models.User{})
	require.NoError(t, db.AutoMigrate(&models.User{}))
	database.DB = db

	mr, err := miniredis.Run()
	require.NoError(t, err)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.Use(Identity())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, Actor(c))
	})
	return mr, r
}

func TestIdentityAnonymous(t *testing.T) {
	mr, r := setupIdentityTest(t)
	defer mr.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, SystemActor, w.Body.String())
}

func TestIdentityWithToken(t *testing.T) {
	mr, r := setupIdentityTest(t)
	defer mr.Close()

	user, err := services.RegisterUser("alice", "password1")
	require.NoError(t, err)
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	mr, r := setupIdentityTest(t)
	defer mr.Close()

	user, err := services.RegisterUser("bob", "password1")
	require.NoError(t, err)
	revoked, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	require.NoError(t, services.AddToDenylist(revoked, time.Hour))

	unknownUser, err := utils.GenerateToken(4242, "ghost", models.UserRoleEditor)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage": "not-a-jwt",
		"revoked": revoked,
		"unknown": unknownUser,
	}
	for name, token := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}
