package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParameterType is the declared type of a prompt parameter value.
type ParameterType string

const (
	ParameterTypeString  ParameterType = "STRING"
	ParameterTypeNumber  ParameterType = "NUMBER"
	ParameterTypeBoolean ParameterType = "BOOLEAN"
	ParameterTypeArray   ParameterType = "ARRAY"
	ParameterTypeObject  ParameterType = "OBJECT"
)

var ParameterTypes = []ParameterType{
	ParameterTypeString,
	ParameterTypeNumber,
	ParameterTypeBoolean,
	ParameterTypeArray,
	ParameterTypeObject,
}

// PromptParameter is a named input of a prompt version. Position keeps the
// order in which the parameters were declared.
type PromptParameter struct {
	ID                string        `gorm:"type:varchar(36);primaryKey" json:"id,omitempty"`
	VersionID         string        `gorm:"type:varchar(36);index;not null" json:"-"`
	Name              string        `gorm:"not null" json:"name"`
	Description       string        `json:"description"`
	ParameterType     ParameterType `gorm:"type:varchar(16);not null" json:"parameterType"`
	DefaultValue      *string       `json:"defaultValue,omitempty"`
	Required          bool          `json:"required"`
	ValidationPattern string        `json:"validationPattern,omitempty"`
	Position          int           `json:"-"`
}

func (PromptParameter) TableName() string {
	return "prompt_parameters"
}

func (p *PromptParameter) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Default returns the default value, or "" when none is set.
func (p PromptParameter) Default() string {
	if p.DefaultValue == nil {
		return ""
	}
	return *p.DefaultValue
}
