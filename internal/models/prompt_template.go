package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptTemplate is a named, reusable prompt definition under a project and category.
type PromptTemplate struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ProjectID   string    `gorm:"index" json:"projectId"`
	Category    string    `gorm:"index" json:"category"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Derived on read
	VersionCount        int64 `gorm:"-" json:"versionCount"`
	HasPublishedVersion bool  `gorm:"-" json:"hasPublishedVersion"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}

func (t *PromptTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
