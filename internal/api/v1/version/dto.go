package version

import (
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"
)

type CreateVersionRequest struct {
	TemplateID      string                   `json:"templateId" binding:"required"`
	VersionNumber   string                   `json:"versionNumber"`
	Content         string                   `json:"content"`
	SystemPrompt    string                   `json:"systemPrompt"`
	ParentVersionID string                   `json:"parentVersionId"`
	Parameters      []models.PromptParameter `json:"parameters"`
}

func (r CreateVersionRequest) toInput() services.VersionInput {
	return services.VersionInput{
		TemplateID:      r.TemplateID,
		VersionNumber:   r.VersionNumber,
		Content:         r.Content,
		SystemPrompt:    r.SystemPrompt,
		ParentVersionID: r.ParentVersionID,
		Parameters:      r.Parameters,
	}
}

// UpdateVersionRequest is a partial update; omitted fields are kept.
type UpdateVersionRequest struct {
	VersionNumber *string                   `json:"versionNumber"`
	Content       *string                   `json:"content"`
	SystemPrompt  *string                   `json:"systemPrompt"`
	Parameters    *[]models.PromptParameter `json:"parameters"`
}

func (r UpdateVersionRequest) toUpdate() services.VersionUpdate {
	return services.VersionUpdate{
		VersionNumber: r.VersionNumber,
		Content:       r.Content,
		SystemPrompt:  r.SystemPrompt,
		Parameters:    r.Parameters,
	}
}

// BranchRequest copies anything it leaves out from the parent version. An
// explicit empty parameters list branches without parameters.
type BranchRequest struct {
	VersionNumber string                    `json:"versionNumber"`
	Content       *string                   `json:"content"`
	SystemPrompt  *string                   `json:"systemPrompt"`
	Parameters    *[]models.PromptParameter `json:"parameters"`
}

func (r BranchRequest) toInput() services.BranchInput {
	return services.BranchInput{
		VersionNumber: r.VersionNumber,
		Content:       r.Content,
		SystemPrompt:  r.SystemPrompt,
		Parameters:    r.Parameters,
	}
}

type StatusUpdateRequest struct {
	Status  models.VersionStatus `json:"status" binding:"required,oneof=DRAFT REVIEW PUBLISHED ARCHIVED REJECTED"`
	Comment string               `json:"comment" binding:"max=1000"`
}

type RollbackRequest struct {
	Comment string `json:"comment" binding:"max=1000"`
}
