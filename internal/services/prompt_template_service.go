package services

import (
	"fmt"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"
	"promptops-backend/pkg/logger"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const TemplateCategoriesCacheKey = "templates:categories"

// TemplateInput carries the editable fields of a template.
type TemplateInput struct {
	Name        string
	Description string
	ProjectID   string
	Category    string
}

// TemplateSearchCriteria filters template listings. Zero values do not filter.
type TemplateSearchCriteria struct {
	SearchText          string
	ProjectID           string
	Category            string
	CreatedBy           string
	HasPublishedVersion *bool
	MinVersionCount     *int
	// UseExactMatch compares SearchText against the whole name.
	UseExactMatch bool
	// UseFuzzyMatch ranks by fuzzy score over name, description and category.
	UseFuzzyMatch bool
}

// CreatePromptTemplate creates a new prompt template
func CreatePromptTemplate(actor string, in TemplateInput) (*models.PromptTemplate, error) {
	exists, err := TemplateNameExists(in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTemplateNameExists
	}

	template := &models.PromptTemplate{
		Name:        in.Name,
		Description: in.Description,
		ProjectID:   in.ProjectID,
		Category:    in.Category,
		CreatedBy:   actor,
	}
	if err := database.DB.Create(template).Error; err != nil {
		return nil, duplicateAs(err, ErrTemplateNameExists)
	}

	cacheDel(TemplateCategoriesCacheKey)
	logger.Log.Info("template created", zap.String("template_id", template.ID), zap.String("by", actor))

	return template, nil
}

// UpdatePromptTemplate updates an existing template
func UpdatePromptTemplate(id string, in TemplateInput) (*models.PromptTemplate, error) {
	var template models.PromptTemplate
	if err := database.DB.First(&template, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	renamed := in.Name != template.Name
	if renamed {
		var count int64
		if err := database.DB.Model(&models.PromptTemplate{}).
			Where("name = ? AND id <> ?", in.Name, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrTemplateNameExists
		}
	}

	template.Name = in.Name
	template.Description = in.Description
	template.ProjectID = in.ProjectID
	template.Category = in.Category

	if err := database.DB.Save(&template).Error; err != nil {
		return nil, duplicateAs(err, ErrTemplateNameExists)
	}

	keys := []string{TemplateCategoriesCacheKey}
	if renamed {
		// cached versions carry the template name
		var versionIDs []string
		if err := database.DB.Model(&models.PromptVersion{}).Where("template_id = ?", id).Pluck("id", &versionIDs).Error; err != nil {
			return nil, err
		}
		for _, vid := range versionIDs {
			keys = append(keys, versionCacheKey(vid))
		}
	}
	cacheDel(keys...)

	if err := fillTemplateStats([]*models.PromptTemplate{&template}); err != nil {
		return nil, err
	}
	return &template, nil
}

// DeletePromptTemplate deletes a template together with its versions,
// their parameters and their audit entries.
func DeletePromptTemplate(id string) error {
	var versionIDs []string

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var template models.PromptTemplate
		if err := tx.First(&template, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return ErrTemplateNotFound
			}
			return err
		}

		if err := tx.Model(&models.PromptVersion{}).Where("template_id = ?", id).Pluck("id", &versionIDs).Error; err != nil {
			return err
		}

		if len(versionIDs) > 0 {
			if err := tx.Where("version_id IN ?", versionIDs).Delete(&models.VersionAuditEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Where("version_id IN ?", versionIDs).Delete(&models.PromptParameter{}).Error; err != nil {
				return err
			}
			if err := tx.Where("template_id = ?", id).Delete(&models.PromptVersion{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&template).Error
	})
	if err != nil {
		return err
	}

	keys := []string{TemplateCategoriesCacheKey}
	for _, vid := range versionIDs {
		keys = append(keys, versionCacheKey(vid))
	}
	cacheDel(keys...)

	logger.Log.Info("template deleted", zap.String("template_id", id), zap.Int("versions", len(versionIDs)))
	return nil
}

// GetPromptTemplate retrieves a template by ID
func GetPromptTemplate(id string) (*models.PromptTemplate, error) {
	var template models.PromptTemplate
	if err := database.DB.First(&template, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	if err := fillTemplateStats([]*models.PromptTemplate{&template}); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListPromptTemplates returns one zero-based page of templates matching the
// criteria, newest first. Fuzzy searches are ordered by match score instead.
func ListPromptTemplates(criteria TemplateSearchCriteria, page, size int) ([]models.PromptTemplate, int64, error) {
	db := applyTemplateFilters(database.DB.Model(&models.PromptTemplate{}), criteria)

	search := strings.TrimSpace(criteria.SearchText)
	if search != "" && criteria.UseFuzzyMatch && !criteria.UseExactMatch {
		return fuzzySearchTemplates(db, search, page, size)
	}

	if search != "" {
		if criteria.UseExactMatch {
			db = db.Where("LOWER(name) = ?", strings.ToLower(search))
		} else {
			like := "%" + escapeLike(strings.ToLower(search)) + "%"
			db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []models.PromptTemplate
	if err := db.Order("created_at desc").Offset(page * size).Limit(size).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	if err := fillTemplateStats(templatePointers(templates)); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE treat wildcard characters in user input literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func applyTemplateFilters(db *gorm.DB, criteria TemplateSearchCriteria) *gorm.DB {
	if criteria.ProjectID != "" {
		db = db.Where("project_id = ?", criteria.ProjectID)
	}
	if criteria.Category != "" {
		db = db.Where("category = ?", criteria.Category)
	}
	if criteria.CreatedBy != "" {
		db = db.Where("created_by = ?", criteria.CreatedBy)
	}

	if criteria.HasPublishedVersion != nil {
		published := database.DB.Model(&models.PromptVersion{}).
			Select("1").
			Where("prompt_versions.template_id = prompt_templates.id AND prompt_versions.status = ?", models.VersionStatusPublished)
		if *criteria.HasPublishedVersion {
			db = db.Where("EXISTS (?)", published)
		} else {
			db = db.Where("NOT EXISTS (?)", published)
		}
	}

	if criteria.MinVersionCount != nil && *criteria.MinVersionCount > 0 {
		counted := database.DB.Model(&models.PromptVersion{}).
			Select("COUNT(*)").
			Where("prompt_versions.template_id = prompt_templates.id")
		db = db.Where("(?) >= ?", counted, *criteria.MinVersionCount)
	}

	return db
}

func fuzzySearchTemplates(db *gorm.DB, search string, page, size int) ([]models.PromptTemplate, int64, error) {
	var candidates []models.PromptTemplate
	if err := db.Order("name").Find(&candidates).Error; err != nil {
		return nil, 0, err
	}

	searchStrings := make([]string, len(candidates))
	for i, t := range candidates {
		searchStrings[i] = fmt.Sprintf("%s %s %s", t.Name, t.Description, t.Category)
	}

	matches := fuzzy.Find(search, searchStrings)
	total := int64(len(matches))

	start := page * size
	if start >= len(matches) {
		return []models.PromptTemplate{}, total, nil
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}

	templates := make([]models.PromptTemplate, 0, end-start)
	for _, match := range matches[start:end] {
		templates = append(templates, candidates[match.Index])
	}

	if err := fillTemplateStats(templatePointers(templates)); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

type templateStats struct {
	TemplateID string
	Total      int64
	Published  int64
}

// fillTemplateStats sets the derived version counters with one grouped query.
func fillTemplateStats(templates []*models.PromptTemplate) error {
	if len(templates) == 0 {
		return nil
	}

	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}

	var rows []templateStats
	err := database.DB.Model(&models.PromptVersion{}).
		Select("template_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS published", models.VersionStatusPublished).
		Where("template_id IN ?", ids).
		Group("template_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	byTemplate := make(map[string]templateStats, len(rows))
	for _, r := range rows {
		byTemplate[r.TemplateID] = r
	}
	for _, t := range templates {
		stats := byTemplate[t.ID]
		t.VersionCount = stats.Total
		t.HasPublishedVersion = stats.Published > 0
	}
	return nil
}

func templatePointers(templates []models.PromptTemplate) []*models.PromptTemplate {
	ptrs := make([]*models.PromptTemplate, len(templates))
	for i := range templates {
		ptrs[i] = &templates[i]
	}
	return ptrs
}

// ListCategories returns the distinct non-empty categories, cached in Redis.
func ListCategories() ([]string, error) {
	var categories []string
	if cacheGet(TemplateCategoriesCacheKey, &categories) {
		return categories, nil
	}

	categories = []string{}
	err := database.DB.Model(&models.PromptTemplate{}).
		Where("category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}

	cacheSet(TemplateCategoriesCacheKey, categories, CategoriesCacheDuration)
	return categories, nil
}

// TemplateNameExists reports whether a template already uses the name.
func TemplateNameExists(name string) (bool, error) {
	var count int64
	if err := database.DB.Model(&models.PromptTemplate{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func templateExists(id string) error {
	var count int64
	if err := database.DB.Model(&models.PromptTemplate{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
