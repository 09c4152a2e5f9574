package api

import (
	"promptops-backend/config"
	_ "promptops-backend/docs"
	"promptops-backend/internal/api/v1/auth"
	"promptops-backend/internal/api/v1/template"
	"promptops-backend/internal/api/v1/version"
	"promptops-backend/internal/middleware"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the HTTP engine. The database and Redis connections must
// already be set up.
func NewRouter(cfg *config.Config) *gin.Engine {
	services.SetCacheDurations(cfg.VersionCacheTTL, cfg.CategoryCacheTTL)
	utils.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity())
	{
		auth.RegisterRoutes(v1)
		template.RegisterRoutes(v1)
		version.RegisterRoutes(v1)
	}

	return router
}
