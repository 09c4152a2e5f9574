package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the session endpoints. Logout reads the bearer token
// itself, so it works without the identity middleware having resolved a user.
func RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/auth")
	{
		sessions.POST("/register", Register)
		sessions.POST("/login", Login)
		sessions.POST("/logout", Logout)
	}
}
