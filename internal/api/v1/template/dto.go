package template

import "promptops-backend/internal/services"

type TemplateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=2000"`
	ProjectID   string `json:"projectId" binding:"max=100"`
	Category    string `json:"category" binding:"max=100"`
}

func (r TemplateRequest) toInput() services.TemplateInput {
	return services.TemplateInput{
		Name:        r.Name,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		Category:    r.Category,
	}
}

type SearchTemplatesRequest struct {
	SearchText          string `json:"searchText"`
	ProjectID           string `json:"projectId"`
	Category            string `json:"category"`
	CreatedBy           string `json:"createdBy"`
	HasPublishedVersion *bool  `json:"hasPublishedVersion"`
	MinVersionCount     *int   `json:"minVersionCount" binding:"omitempty,min=0"`
	UseExactMatch       bool   `json:"useExactMatch"`
	UseFuzzyMatch       bool   `json:"useFuzzyMatch"`
}

func (r SearchTemplatesRequest) toCriteria() services.TemplateSearchCriteria {
	return services.TemplateSearchCriteria{
		SearchText:          r.SearchText,
		ProjectID:           r.ProjectID,
		Category:            r.Category,
		CreatedBy:           r.CreatedBy,
		HasPublishedVersion: r.HasPublishedVersion,
		MinVersionCount:     r.MinVersionCount,
		UseExactMatch:       r.UseExactMatch,
		UseFuzzyMatch:       r.UseFuzzyMatch,
	}
}

type NameCheckResponse struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}
