package services

import (
	"encoding/json"
	"errors"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// recordAudit writes an audit entry inside the caller's transaction.
func recordAudit(tx *gorm.DB, entry *models.VersionAuditEntry) error {
	return tx.Create(entry).Error
}

func auditMetadata(values map[string]interface{}) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// GetAuditTrail returns the audit entries of a version, newest first.
func GetAuditTrail(versionID string) ([]models.VersionAuditEntry, error) {
	var count int64
	if err := database.DB.Model(&models.PromptVersion{}).Where("id = ?", versionID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrVersionNotFound
	}

	var entries []models.VersionAuditEntry
	err := database.DB.Where("version_id = ?", versionID).
		Order("performed_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
