package template

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/templates")
	{
		templates.GET("", ListTemplates)
		templates.POST("", CreateTemplate)
		templates.POST("/search", SearchTemplates)
		templates.GET("/categories", ListCategories)
		templates.GET("/check-name", CheckName)
		templates.GET("/:id", GetTemplate)
		templates.PUT("/:id", UpdateTemplate)
		templates.DELETE("/:id", DeleteTemplate)
		templates.GET("/:id/versions", ListTemplateVersions)
		templates.GET("/:id/history", GetTemplateHistory)
	}
}
