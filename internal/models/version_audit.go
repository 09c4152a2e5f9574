package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditActionType string

const (
	AuditActionCreated       AuditActionType = "CREATED"
	AuditActionUpdated       AuditActionType = "UPDATED"
	AuditActionBranched      AuditActionType = "BRANCHED"
	AuditActionStatusChanged AuditActionType = "STATUS_CHANGED"
	AuditActionRollback      AuditActionType = "ROLLBACK"
)

// VersionAuditEntry records a single mutation of a prompt version.
type VersionAuditEntry struct {
	ID                 string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	VersionID          string          `gorm:"type:varchar(36);index;not null" json:"versionId"`
	ActionType         AuditActionType `gorm:"type:varchar(32);not null" json:"actionType"`
	PerformedBy        string          `json:"performedBy"`
	PerformedAt        time.Time       `gorm:"index" json:"performedAt"`
	Details            string          `json:"details"`
	Comment            string          `json:"comment,omitempty"`
	PreviousStatus     VersionStatus   `gorm:"type:varchar(16)" json:"previousStatus,omitempty"`
	NewStatus          VersionStatus   `gorm:"type:varchar(16)" json:"newStatus,omitempty"`
	ReferenceVersionID string          `gorm:"type:varchar(36)" json:"referenceVersionId,omitempty"`
	Metadata           datatypes.JSON  `json:"metadata,omitempty" swaggertype:"object"`
}

func (VersionAuditEntry) TableName() string {
	return "version_audit_entries"
}

func (e *VersionAuditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.PerformedAt.IsZero() {
		e.PerformedAt = time.Now()
	}
	return nil
}
