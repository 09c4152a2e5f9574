package version

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	versions := router.Group("/versions")
	{
		versions.GET("", ListVersions)
		versions.POST("", CreateVersion)
		versions.GET("/compare", CompareVersions)
		versions.GET("/:id", GetVersion)
		versions.PUT("/:id", UpdateVersion)
		versions.POST("/:id/branch", CreateBranch)
		versions.POST("/:id/status", UpdateStatus)
		versions.POST("/:id/rollback", RollbackVersion)
		versions.GET("/:id/lineage", GetLineage)
		versions.GET("/:id/audit-trail", GetAuditTrail)
		versions.GET("/:id/status-transitions", GetStatusTransitions)
		versions.GET("/:id/can-transition", CanTransition)
	}
}
