package template

import (
	"net/http"
	"promptops-backend/internal/api/v1/common"
	"promptops-backend/internal/middleware"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListTemplates godoc
// @Summary List prompt templates
// @Description Get a zero-based page of templates, newest first
// @Tags templates
// @Produce json
// @Param page query int false "Page number" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} utils.Response{data=utils.PageResponse[models.PromptTemplate]}
// @Failure 500 {object} utils.Response
// @Router /templates [get]
func ListTemplates(c *gin.Context) {
	page, size := utils.ParsePageParams(c)

	templates, total, err := services.ListPromptTemplates(services.TemplateSearchCriteria{}, page, size)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", utils.NewPageResponse(templates, total, page, size))
}

// SearchTemplates godoc
// @Summary Search prompt templates
// @Description Filter templates by text, project, category, author and version state
// @Tags templates
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(0)
// @Param size query int false "Page size" default(10)
// @Param request body SearchTemplatesRequest true "Search criteria"
// @Success 200 {object} utils.Response{data=utils.PageResponse[models.PromptTemplate]}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/search [post]
func SearchTemplates(c *gin.Context) {
	var req SearchTemplatesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	page, size := utils.ParsePageParams(c)

	templates, total, err := services.ListPromptTemplates(req.toCriteria(), page, size)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", utils.NewPageResponse(templates, total, page, size))
}

// ListCategories godoc
// @Summary List template categories
// @Description Get the distinct categories in use, sorted
// @Tags templates
// @Produce json
// @Success 200 {object} utils.Response{data=[]string}
// @Failure 500 {object} utils.Response
// @Router /templates/categories [get]
func ListCategories(c *gin.Context) {
	categories, err := services.ListCategories()
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", categories)
}

// CheckName godoc
// @Summary Check template name
// @Description Report whether a template name is already taken
// @Tags templates
// @Produce json
// @Param name query string true "Template name"
// @Success 200 {object} utils.Response{data=NameCheckResponse}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/check-name [get]
func CheckName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		utils.Fail(c, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}

	exists, err := services.TemplateNameExists(name)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", NameCheckResponse{Name: name, Exists: exists})
}

// GetTemplate godoc
// @Summary Get a prompt template
// @Description Get a template with its version counters
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} utils.Response{data=models.PromptTemplate}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/{id} [get]
func GetTemplate(c *gin.Context) {
	template, err := services.GetPromptTemplate(c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", template)
}

// CreateTemplate godoc
// @Summary Create a prompt template
// @Description Create a new template; names are unique
// @Tags templates
// @Accept json
// @Produce json
// @Param request body TemplateRequest true "Template"
// @Success 201 {object} utils.Response{data=models.PromptTemplate}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates [post]
func CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, err := services.CreatePromptTemplate(middleware.Actor(c), req.toInput())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Created(c, "Template created successfully", template)
}

// UpdateTemplate godoc
// @Summary Update a prompt template
// @Description Update the name, description, project and category of a template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body TemplateRequest true "Template"
// @Success 200 {object} utils.Response{data=models.PromptTemplate}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/{id} [put]
func UpdateTemplate(c *gin.Context) {
	var req TemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, err := services.UpdatePromptTemplate(c.Param("id"), req.toInput())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Template updated successfully", template)
}

// DeleteTemplate godoc
// @Summary Delete a prompt template
// @Description Delete a template with all of its versions and their audit trail
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/{id} [delete]
func DeleteTemplate(c *gin.Context) {
	if err := services.DeletePromptTemplate(c.Param("id")); err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Template deleted successfully", nil)
}

// ListTemplateVersions godoc
// @Summary List versions of a template
// @Description Get a zero-based page of the template's versions, newest first
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Param page query int false "Page number" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} utils.Response{data=utils.PageResponse[models.PromptVersion]}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/{id}/versions [get]
func ListTemplateVersions(c *gin.Context) {
	page, size := utils.ParsePageParams(c)

	versions, total, err := services.ListVersionsByTemplate(c.Param("id"), page, size)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", utils.NewPageResponse(versions, total, page, size))
}

// GetTemplateHistory godoc
// @Summary Get template version history
// @Description Get every version of the template ordered by version number
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} utils.Response{data=[]models.PromptVersion}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /templates/{id}/history [get]
func GetTemplateHistory(c *gin.Context) {
	versions, err := services.GetVersionHistory(c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	utils.Success(c, "Success", versions)
}
