package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(7, "alice", "editor")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "editor", claims.Role)

	ttl := claims.Expiry()
	assert.Greater(t, ttl, TokenTTL-time.Minute)
	assert.LessOrEqual(t, ttl, TokenTTL)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first")
	token, err := GenerateToken(1, "bob", "admin")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAndExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "eve"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(unsigned)
	assert.Error(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "eve",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	_, err := ExtractToken(c)
	assert.ErrorIs(t, err, ErrMissingToken)

	c.Request.Header.Set("Authorization", "Token abc")
	_, err = ExtractToken(c)
	assert.ErrorIs(t, err, ErrNotBearer)

	c.Request.Header.Set("Authorization", "Bearer abc")
	token, err := ExtractToken(c)
	assert.NoError(t, err)
	assert.Equal(t, "abc", token)
}
