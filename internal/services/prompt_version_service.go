package services

import (
	"errors"
	"fmt"
	"promptops-backend/internal/database"
	"promptops-backend/internal/lifecycle"
	"promptops-backend/internal/models"
	"promptops-backend/pkg/logger"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const VersionCacheKeyPrefix = "version:"

// VersionInput carries the fields of a new version.
type VersionInput struct {
	TemplateID      string
	VersionNumber   string
	Content         string
	SystemPrompt    string
	ParentVersionID string
	Parameters      []models.PromptParameter
}

// VersionUpdate is a partial update of a draft version. Nil fields are kept.
type VersionUpdate struct {
	VersionNumber *string
	Content       *string
	SystemPrompt  *string
	Parameters    *[]models.PromptParameter
}

// BranchInput describes a branch off an existing version. Nil fields are
// copied from the parent and an empty VersionNumber is generated. A non-nil
// empty Parameters drops the parent's parameters.
type BranchInput struct {
	VersionNumber string
	Content       *string
	SystemPrompt  *string
	Parameters    *[]models.PromptParameter
}

// VersionLineage is the root-first ancestor chain of a version plus its
// direct children.
type VersionLineage struct {
	Lineage  []models.PromptVersion `json:"lineage"`
	Children []models.PromptVersion `json:"children"`
}

func versionCacheKey(id string) string {
	return VersionCacheKeyPrefix + id
}

// CreatePromptVersion creates a DRAFT version of a template.
func CreatePromptVersion(actor string, in VersionInput) (*models.PromptVersion, error) {
	if err := lifecycle.ValidateVersion(lifecycle.VersionInput{
		VersionNumber: in.VersionNumber,
		Content:       in.Content,
		Parameters:    in.Parameters,
	}); err != nil {
		return nil, err
	}

	if err := templateExists(in.TemplateID); err != nil {
		return nil, err
	}

	details := "Version created"
	var parentID *string
	if in.ParentVersionID != "" {
		parent, err := loadVersion(in.ParentVersionID)
		if err != nil {
			return nil, fmt.Errorf("parent version: %w", err)
		}
		if parent.TemplateID != in.TemplateID {
			return nil, ErrCrossTemplateParent
		}
		parentID = &parent.ID
		details = fmt.Sprintf("Version created from %s", parent.VersionNumber)
	}

	if err := checkVersionNumberFree(in.TemplateID, in.VersionNumber, ""); err != nil {
		return nil, err
	}

	version := &models.PromptVersion{
		TemplateID:      in.TemplateID,
		VersionNumber:   in.VersionNumber,
		Content:         in.Content,
		SystemPrompt:    in.SystemPrompt,
		Status:          models.VersionStatusDraft,
		ParentVersionID: parentID,
		CreatedBy:       actor,
		Parameters:      newParameters(in.Parameters),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(version).Error; err != nil {
			return duplicateAs(err, ErrVersionNumberExists)
		}
		return recordAudit(tx, &models.VersionAuditEntry{
			VersionID:          version.ID,
			ActionType:         models.AuditActionCreated,
			PerformedBy:        actor,
			Details:            details,
			NewStatus:          models.VersionStatusDraft,
			ReferenceVersionID: in.ParentVersionID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("version created",
		zap.String("version_id", version.ID),
		zap.String("template_id", version.TemplateID),
		zap.String("version_number", version.VersionNumber),
		zap.String("by", actor),
	)
	return loadVersion(version.ID)
}

// GetPromptVersion returns a version with its parameters and template name.
func GetPromptVersion(id string) (*models.PromptVersion, error) {
	var cached models.PromptVersion
	if cacheGet(versionCacheKey(id), &cached) {
		return &cached, nil
	}

	version, err := loadVersion(id)
	if err != nil {
		return nil, err
	}

	cacheSet(versionCacheKey(id), version, VersionCacheDuration)
	return version, nil
}

// loadVersion reads a version from the database, bypassing the cache.
func loadVersion(id string) (*models.PromptVersion, error) {
	var version models.PromptVersion
	err := database.DB.Preload("Parameters", orderParameters).First(&version, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	if version.Parameters == nil {
		version.Parameters = []models.PromptParameter{}
	}
	versions := []models.PromptVersion{version}
	if err := fillTemplateNames(versions); err != nil {
		return nil, err
	}
	return &versions[0], nil
}

func orderParameters(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func fillTemplateNames(versions []models.PromptVersion) error {
	if len(versions) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var ids []string
	for _, v := range versions {
		if !seen[v.TemplateID] {
			seen[v.TemplateID] = true
			ids = append(ids, v.TemplateID)
		}
	}

	var templates []models.PromptTemplate
	if err := database.DB.Select("id", "name").Where("id IN ?", ids).Find(&templates).Error; err != nil {
		return err
	}
	names := make(map[string]string, len(templates))
	for _, t := range templates {
		names[t.ID] = t.Name
	}
	for i := range versions {
		versions[i].TemplateName = names[versions[i].TemplateID]
	}
	return nil
}

// ListVersionsByTemplate returns one zero-based page of a template's versions, newest first.
func ListVersionsByTemplate(templateID string, page, size int) ([]models.PromptVersion, int64, error) {
	if err := templateExists(templateID); err != nil {
		return nil, 0, err
	}
	return listVersions(database.DB.Model(&models.PromptVersion{}).Where("template_id = ?", templateID), page, size)
}

// ListAllVersions returns one zero-based page of all versions, newest first.
func ListAllVersions(page, size int) ([]models.PromptVersion, int64, error) {
	return listVersions(database.DB.Model(&models.PromptVersion{}), page, size)
}

func listVersions(db *gorm.DB, page, size int) ([]models.PromptVersion, int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var versions []models.PromptVersion
	err := db.Preload("Parameters", orderParameters).
		Order("created_at desc").
		Offset(page * size).
		Limit(size).
		Find(&versions).Error
	if err != nil {
		return nil, 0, err
	}

	if err := fillTemplateNames(versions); err != nil {
		return nil, 0, err
	}
	return versions, total, nil
}

// GetVersionHistory returns every version of a template ordered by version number.
func GetVersionHistory(templateID string) ([]models.PromptVersion, error) {
	if err := templateExists(templateID); err != nil {
		return nil, err
	}

	var versions []models.PromptVersion
	if err := database.DB.Preload("Parameters", orderParameters).Where("template_id = ?", templateID).Find(&versions).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return lifecycle.CompareVersionNumbers(versions[i].VersionNumber, versions[j].VersionNumber) < 0
	})

	if err := fillTemplateNames(versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// UpdatePromptVersion edits a DRAFT version. Supplied parameters replace the
// existing ones.
func UpdatePromptVersion(id, actor string, update VersionUpdate) (*models.PromptVersion, error) {
	version, err := loadVersion(id)
	if err != nil {
		return nil, err
	}
	if version.Status != models.VersionStatusDraft {
		return nil, ErrVersionNotEditable
	}

	previousContent := version.Content
	next := *version
	if update.VersionNumber != nil {
		next.VersionNumber = *update.VersionNumber
	}
	if update.Content != nil {
		next.Content = *update.Content
	}
	if update.SystemPrompt != nil {
		next.SystemPrompt = *update.SystemPrompt
	}
	if update.Parameters != nil {
		next.Parameters = *update.Parameters
	}

	if err := lifecycle.ValidateVersion(lifecycle.VersionInput{
		VersionNumber: next.VersionNumber,
		Content:       next.Content,
		Parameters:    next.Parameters,
	}); err != nil {
		return nil, err
	}

	if next.VersionNumber != version.VersionNumber {
		if err := checkVersionNumberFree(version.TemplateID, next.VersionNumber, version.ID); err != nil {
			return nil, err
		}
	}

	stats := lifecycle.SummarizeDiff(lifecycle.DiffLines(previousContent, next.Content))

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PromptVersion{}).
			Where("id = ? AND status = ?", id, models.VersionStatusDraft).
			Updates(map[string]interface{}{
				"version_number": next.VersionNumber,
				"content":        next.Content,
				"system_prompt":  next.SystemPrompt,
				"updated_at":     time.Now(),
			})
		if res.Error != nil {
			return duplicateAs(res.Error, ErrVersionNumberExists)
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if update.Parameters != nil {
			if err := tx.Where("version_id = ?", id).Delete(&models.PromptParameter{}).Error; err != nil {
				return err
			}
			params := newParameters(*update.Parameters)
			for i := range params {
				params[i].VersionID = id
			}
			if len(params) > 0 {
				if err := tx.Create(&params).Error; err != nil {
					return err
				}
			}
		}

		return recordAudit(tx, &models.VersionAuditEntry{
			VersionID:   id,
			ActionType:  models.AuditActionUpdated,
			PerformedBy: actor,
			Details:     "Version updated",
			Metadata: auditMetadata(map[string]interface{}{
				"linesAdded":        stats.Added,
				"linesRemoved":      stats.Removed,
				"parametersChanged": update.Parameters != nil,
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	cacheDel(versionCacheKey(id))
	return loadVersion(id)
}

// CreateBranch creates a DRAFT child of the parent version in the same template.
func CreateBranch(parentID, actor string, in BranchInput) (*models.PromptVersion, error) {
	parent, err := loadVersion(parentID)
	if err != nil {
		return nil, err
	}

	versionNumber := in.VersionNumber
	if versionNumber == "" {
		versionNumber, err = nextVersionNumber(parent.TemplateID)
		if err != nil {
			return nil, err
		}
	}

	content := parent.Content
	if in.Content != nil && *in.Content != "" {
		content = *in.Content
	}
	systemPrompt := parent.SystemPrompt
	if in.SystemPrompt != nil {
		systemPrompt = *in.SystemPrompt
	}
	params := parent.Parameters
	if in.Parameters != nil {
		params = *in.Parameters
	}

	if err := lifecycle.ValidateVersion(lifecycle.VersionInput{
		VersionNumber: versionNumber,
		Content:       content,
		Parameters:    params,
	}); err != nil {
		return nil, err
	}
	if err := checkVersionNumberFree(parent.TemplateID, versionNumber, ""); err != nil {
		return nil, err
	}

	branch := &models.PromptVersion{
		TemplateID:      parent.TemplateID,
		VersionNumber:   versionNumber,
		Content:         content,
		SystemPrompt:    systemPrompt,
		Status:          models.VersionStatusDraft,
		ParentVersionID: &parent.ID,
		CreatedBy:       actor,
		Parameters:      newParameters(params),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(branch).Error; err != nil {
			return duplicateAs(err, ErrVersionNumberExists)
		}
		return recordAudit(tx, &models.VersionAuditEntry{
			VersionID:          branch.ID,
			ActionType:         models.AuditActionBranched,
			PerformedBy:        actor,
			Details:            fmt.Sprintf("Branched from version %s", parent.VersionNumber),
			NewStatus:          models.VersionStatusDraft,
			ReferenceVersionID: parent.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("version branched",
		zap.String("version_id", branch.ID),
		zap.String("parent_id", parent.ID),
		zap.String("by", actor),
	)
	return loadVersion(branch.ID)
}

// UpdateVersionStatus moves a version to the target status. Publishing
// archives any other published version of the same template.
func UpdateVersionStatus(id string, target models.VersionStatus, comment, actor string) (*models.PromptVersion, error) {
	version, err := loadVersion(id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Transition(version.Status, target)
	if err != nil {
		return nil, err
	}

	touched := []string{versionCacheKey(id)}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PromptVersion{}).
			Where("id = ? AND status = ?", id, version.Status).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if next == models.VersionStatusPublished {
			archived, err := archiveOtherPublished(tx, version, actor)
			if err != nil {
				return err
			}
			touched = append(touched, archived...)
		}

		return recordAudit(tx, &models.VersionAuditEntry{
			VersionID:      id,
			ActionType:     models.AuditActionStatusChanged,
			PerformedBy:    actor,
			Details:        fmt.Sprintf("Status changed from %s to %s", version.Status, next),
			Comment:        comment,
			PreviousStatus: version.Status,
			NewStatus:      next,
		})
	})
	if err != nil {
		return nil, err
	}

	cacheDel(touched...)
	logger.Log.Info("version status changed",
		zap.String("version_id", id),
		zap.String("from", string(version.Status)),
		zap.String("to", string(next)),
		zap.String("by", actor),
	)
	return loadVersion(id)
}

// archiveOtherPublished archives the other published versions of the
// template and returns their cache keys.
func archiveOtherPublished(tx *gorm.DB, published *models.PromptVersion, actor string) ([]string, error) {
	var others []models.PromptVersion
	err := tx.Where("template_id = ? AND status = ? AND id <> ?", published.TemplateID, models.VersionStatusPublished, published.ID).
		Find(&others).Error
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, other := range others {
		res := tx.Model(&models.PromptVersion{}).
			Where("id = ? AND status = ?", other.ID, models.VersionStatusPublished).
			Updates(map[string]interface{}{"status": models.VersionStatusArchived, "updated_at": time.Now()})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		if err := recordAudit(tx, &models.VersionAuditEntry{
			VersionID:          other.ID,
			ActionType:         models.AuditActionStatusChanged,
			PerformedBy:        actor,
			Details:            fmt.Sprintf("Archived because version %s was published", published.VersionNumber),
			PreviousStatus:     models.VersionStatusPublished,
			NewStatus:          models.VersionStatusArchived,
			ReferenceVersionID: published.ID,
		}); err != nil {
			return nil, err
		}
		keys = append(keys, versionCacheKey(other.ID))
	}
	return keys, nil
}

// CompareVersions diffs two versions of the same template.
func CompareVersions(sourceID, targetID string) (*lifecycle.ComparisonResult, error) {
	source, err := loadVersion(sourceID)
	if err != nil {
		return nil, fmt.Errorf("source version: %w", err)
	}
	target, err := loadVersion(targetID)
	if err != nil {
		return nil, fmt.Errorf("target version: %w", err)
	}
	if source.TemplateID != target.TemplateID {
		return nil, ErrCrossTemplateCompare
	}

	result := lifecycle.CompareVersions(source, target)
	return &result, nil
}

// RollbackVersion restores an earlier version by copying it into a new DRAFT
// whose parent is the restored version. History is never rewritten.
func RollbackVersion(sourceID, comment, actor string) (*models.PromptVersion, error) {
	source, err := loadVersion(sourceID)
	if err != nil {
		return nil, err
	}
	if source.Status == models.VersionStatusArchived {
		return nil, ErrRollbackArchived
	}

	versionNumber, err := nextVersionNumber(source.TemplateID)
	if err != nil {
		return nil, err
	}

	restored := &models.PromptVersion{
		TemplateID:      source.TemplateID,
		VersionNumber:   versionNumber,
		Content:         source.Content,
		SystemPrompt:    source.SystemPrompt,
		Status:          models.VersionStatusDraft,
		ParentVersionID: &source.ID,
		CreatedBy:       actor,
		Parameters:      newParameters(source.Parameters),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(restored).Error; err != nil {
			return duplicateAs(err, ErrVersionNumberExists)
		}
		return recordAudit(tx, &models.VersionAuditEntry{
			VersionID:          restored.ID,
			ActionType:         models.AuditActionRollback,
			PerformedBy:        actor,
			Details:            fmt.Sprintf("Rolled back to version %s", source.VersionNumber),
			Comment:            comment,
			NewStatus:          models.VersionStatusDraft,
			ReferenceVersionID: source.ID,
			Metadata: auditMetadata(map[string]interface{}{
				"sourceVersionNumber": source.VersionNumber,
				"sourceStatus":        source.Status,
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("version rolled back",
		zap.String("version_id", restored.ID),
		zap.String("source_id", source.ID),
		zap.String("by", actor),
	)
	return loadVersion(restored.ID)
}

// GetVersionLineage returns the ancestor chain (root first) and the direct
// children of a version.
func GetVersionLineage(id string) (*VersionLineage, error) {
	chain, err := lifecycle.LineageChain(id, loadVersion)
	if err != nil {
		if errors.Is(err, lifecycle.ErrCycleDetected) {
			logger.Log.Error("version lineage is cyclic", zap.String("version_id", id), zap.Error(err))
		}
		return nil, err
	}

	version := chain[len(chain)-1]
	var siblings []models.PromptVersion
	err = database.DB.Preload("Parameters", orderParameters).
		Where("template_id = ?", version.TemplateID).
		Order("created_at").
		Find(&siblings).Error
	if err != nil {
		return nil, err
	}
	children := lifecycle.Children(id, siblings)
	for i := range children {
		if children[i].Parameters == nil {
			children[i].Parameters = []models.PromptParameter{}
		}
	}
	if err := fillTemplateNames(children); err != nil {
		return nil, err
	}

	return &VersionLineage{Lineage: chain, Children: children}, nil
}

// GetStatusTransitions returns the statuses the version may move to next,
// keyed by its current status.
func GetStatusTransitions(id string) (map[models.VersionStatus][]models.VersionStatus, error) {
	version, err := GetPromptVersion(id)
	if err != nil {
		return nil, err
	}
	return map[models.VersionStatus][]models.VersionStatus{
		version.Status: lifecycle.AllowedTransitions(version.Status),
	}, nil
}

// CanTransitionToStatus reports whether the version may move to target.
func CanTransitionToStatus(id string, target models.VersionStatus) (bool, error) {
	version, err := GetPromptVersion(id)
	if err != nil {
		return false, err
	}
	return lifecycle.CanTransition(version.Status, target), nil
}

func checkVersionNumberFree(templateID, versionNumber, excludeID string) error {
	db := database.DB.Model(&models.PromptVersion{}).Where("template_id = ? AND version_number = ?", templateID, versionNumber)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrVersionNumberExists
	}
	return nil
}

func nextVersionNumber(templateID string) (string, error) {
	var numbers []string
	if err := database.DB.Model(&models.PromptVersion{}).Where("template_id = ?", templateID).Pluck("version_number", &numbers).Error; err != nil {
		return "", err
	}
	return lifecycle.NextVersionNumber(numbers), nil
}

// newParameters copies parameter definitions for insertion under a new
// version, dropping ids and recording declaration order.
func newParameters(params []models.PromptParameter) []models.PromptParameter {
	out := make([]models.PromptParameter, len(params))
	for i, p := range params {
		p.ID = ""
		p.VersionID = ""
		p.Position = i
		out[i] = p
	}
	return out
}
