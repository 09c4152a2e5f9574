package version

import (
	"net/http"
	"promptops-backend/internal/api/v1/common"
	"promptops-backend/internal/middleware"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListVersions godoc
// @Summary List all versions
// @Description Get a zero-based page of versions across all templates, newest first
// @Tags versions
// @Produce json
// @Param page query int false "Page number" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} utils.Response{data=utils.PageResponse[models.PromptVersion]}
// @Failure 500 {object} utils.Response
// @Router /versions [get]
func ListVersions(c *gin.Context) {
	page, size := utils.ParsePageParams(c)

	versions, total, err := services.ListAllVersions(page, size)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", utils.NewPageResponse(versions, total, page, size))
}

// GetVersion godoc
// @Summary Get a version
// @Description Get a version with its parameters
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} utils.Response{data=models.PromptVersion}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id} [get]
func GetVersion(c *gin.Context) {
	version, err := services.GetPromptVersion(c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", version)
}

// CreateVersion godoc
// @Summary Create a version
// @Description Create a DRAFT version of a template, optionally under a parent version of the same template
// @Tags versions
// @Accept json
// @Produce json
// @Param request body CreateVersionRequest true "Version"
// @Success 201 {object} utils.Response{data=models.PromptVersion}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions [post]
func CreateVersion(c *gin.Context) {
	var req CreateVersionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	version, err := services.CreatePromptVersion(middleware.Actor(c), req.toInput())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Created(c, "Version created successfully", version)
}

// UpdateVersion godoc
// @Summary Update a draft version
// @Description Edit the number, content, system prompt or parameters of a DRAFT version
// @Tags versions
// @Accept json
// @Produce json
// @Param id path string true "Version ID"
// @Param request body UpdateVersionRequest true "Changed fields"
// @Success 200 {object} utils.Response{data=models.PromptVersion}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id} [put]
func UpdateVersion(c *gin.Context) {
	var req UpdateVersionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	version, err := services.UpdatePromptVersion(c.Param("id"), middleware.Actor(c), req.toUpdate())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Version updated successfully", version)
}

// CreateBranch godoc
// @Summary Branch a version
// @Description Create a DRAFT child version; omitted fields are copied from the parent and a missing number is generated
// @Tags versions
// @Accept json
// @Produce json
// @Param id path string true "Parent version ID"
// @Param request body BranchRequest false "Branch"
// @Success 201 {object} utils.Response{data=models.PromptVersion}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/branch [post]
func CreateBranch(c *gin.Context) {
	var req BranchRequest
	if c.Request.ContentLength != 0 && !utils.BindAndValidate(c, &req) {
		return
	}

	version, err := services.CreateBranch(c.Param("id"), middleware.Actor(c), req.toInput())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Created(c, "Branch created successfully", version)
}

// UpdateStatus godoc
// @Summary Change version status
// @Description Move a version through its lifecycle; publishing archives the previously published version
// @Tags versions
// @Accept json
// @Produce json
// @Param id path string true "Version ID"
// @Param request body StatusUpdateRequest true "Target status"
// @Success 200 {object} utils.Response{data=models.PromptVersion}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 422 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/status [post]
func UpdateStatus(c *gin.Context) {
	var req StatusUpdateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	version, err := services.UpdateVersionStatus(c.Param("id"), req.Status, req.Comment, middleware.Actor(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Status updated successfully", version)
}

// CompareVersions godoc
// @Summary Compare two versions
// @Description Line diff of content, system prompt and parameters between two versions of one template
// @Tags versions
// @Produce json
// @Param sourceId query string true "Source version ID"
// @Param targetId query string true "Target version ID"
// @Success 200 {object} utils.Response{data=lifecycle.ComparisonResult}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/compare [get]
func CompareVersions(c *gin.Context) {
	sourceID := c.Query("sourceId")
	targetID := c.Query("targetId")
	if sourceID == "" || targetID == "" {
		utils.Fail(c, http.StatusBadRequest, "Query parameters 'sourceId' and 'targetId' are required")
		return
	}

	result, err := services.CompareVersions(sourceID, targetID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", result)
}

// RollbackVersion godoc
// @Summary Roll back to a version
// @Description Copy a version into a new DRAFT version whose parent is the restored one
// @Tags versions
// @Accept json
// @Produce json
// @Param id path string true "Version ID to restore"
// @Param request body RollbackRequest false "Comment"
// @Success 201 {object} utils.Response{data=models.PromptVersion}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/rollback [post]
func RollbackVersion(c *gin.Context) {
	var req RollbackRequest
	if c.Request.ContentLength != 0 && !utils.BindAndValidate(c, &req) {
		return
	}

	version, err := services.RollbackVersion(c.Param("id"), req.Comment, middleware.Actor(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Created(c, "Rolled back successfully", version)
}

// GetLineage godoc
// @Summary Get version lineage
// @Description Get the ancestor chain from the root version and the direct children
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} utils.Response{data=services.VersionLineage}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/lineage [get]
func GetLineage(c *gin.Context) {
	lineage, err := services.GetVersionLineage(c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", lineage)
}

// GetAuditTrail godoc
// @Summary Get version audit trail
// @Description Get the recorded changes of a version, newest first
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} utils.Response{data=[]models.VersionAuditEntry}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/audit-trail [get]
func GetAuditTrail(c *gin.Context) {
	entries, err := services.GetAuditTrail(c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", entries)
}

// GetStatusTransitions godoc
// @Summary Get allowed status transitions
// @Description Get the statuses the version can move to, keyed by its current status
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} utils.Response{data=map[string][]string}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/status-transitions [get]
func GetStatusTransitions(c *gin.Context) {
	transitions, err := services.GetStatusTransitions(c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", transitions)
}

// CanTransition godoc
// @Summary Check a status transition
// @Description Report whether the version can move to the given status
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Param status query string true "Target status" Enums(DRAFT, REVIEW, PUBLISHED, ARCHIVED, REJECTED)
// @Success 200 {object} utils.Response{data=bool}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /versions/{id}/can-transition [get]
func CanTransition(c *gin.Context) {
	target := models.VersionStatus(c.Query("status"))
	if !target.IsValid() {
		utils.Fail(c, http.StatusBadRequest, "Query parameter 'status' must be one of DRAFT, REVIEW, PUBLISHED, ARCHIVED, REJECTED")
		return
	}

	ok, err := services.CanTransitionToStatus(c.Param("id"), target)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", ok)
}
