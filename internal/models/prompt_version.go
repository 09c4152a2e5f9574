package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VersionStatus is the lifecycle status of a prompt version.
type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "DRAFT"
	VersionStatusReview    VersionStatus = "REVIEW"
	VersionStatusPublished VersionStatus = "PUBLISHED"
	VersionStatusArchived  VersionStatus = "ARCHIVED"
	VersionStatusRejected  VersionStatus = "REJECTED"
)

// VersionStatuses lists every status in lifecycle order.
var VersionStatuses = []VersionStatus{
	VersionStatusDraft,
	VersionStatusReview,
	VersionStatusPublished,
	VersionStatusArchived,
	VersionStatusRejected,
}

// IsValid reports whether s is one of the known statuses.
func (s VersionStatus) IsValid() bool {
	for _, known := range VersionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PromptVersion is a snapshot of a template's prompt content, system prompt
// and parameters. ParentVersionID is a weak back-reference to the version it
// was branched from; it never cascades.
type PromptVersion struct {
	ID              string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID      string            `gorm:"type:varchar(36);not null;uniqueIndex:idx_template_version_number" json:"templateId"`
	TemplateName    string            `gorm:"-" json:"templateName"`
	VersionNumber   string            `gorm:"not null;uniqueIndex:idx_template_version_number" json:"versionNumber"`
	Content         string            `gorm:"type:text;not null" json:"content"`
	SystemPrompt    string            `gorm:"type:text" json:"systemPrompt,omitempty"`
	Status          VersionStatus     `gorm:"type:varchar(16);index;not null;default:'DRAFT'" json:"status"`
	ParentVersionID *string           `gorm:"type:varchar(36);index" json:"parentVersionId,omitempty"`
	CreatedBy       string            `json:"createdBy"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	Parameters      []PromptParameter `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"parameters"`
}

func (PromptVersion) TableName() string {
	return "prompt_versions"
}

func (v *PromptVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// ParentID returns the parent version id, or "" for a root version.
func (v *PromptVersion) ParentID() string {
	if v.ParentVersionID == nil {
		return ""
	}
	return *v.ParentVersionID
}
