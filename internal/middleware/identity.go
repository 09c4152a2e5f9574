package middleware

import (
	"net/http"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"
	"promptops-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserKey = "user"
	// SystemActor is recorded for changes made without a signed-in user.
	SystemActor = "system"
)

// Identity attaches the signed-in user to the context when the request
// carries a bearer token. Requests without a token pass through anonymously;
// a token that is present but invalid or revoked is rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.Next()
			return
		}

		isDenylisted, err := services.IsDenylisted(tokenString)
		if err != nil {
			logger.Log.Warn("token denylist lookup failed", zap.Error(err))
		} else if isDenylisted {
			utils.Abort(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			utils.Abort(c, http.StatusUnauthorized, "Invalid user ID in token")
			return
		}

		user, err := services.FindUserByID(userID)
		if err != nil {
			utils.Abort(c, http.StatusUnauthorized, "User not found")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Identity, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

// Actor names who performs the current request.
func Actor(c *gin.Context) string {
	if user, ok := CurrentUser(c); ok && user.Username != "" {
		return user.Username
	}
	return SystemActor
}
