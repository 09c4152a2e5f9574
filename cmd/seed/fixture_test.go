package main

import (
	"os"
	"path/filepath"
	"testing"

	"promptops-backend/internal/database"
	"promptops-backend/internal/lifecycle"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sampleFixture = `
templates:
  - name: support-reply
    category: support
    versions:
      - versionNumber: "1.0.0"
        content: "Hi {{customer}}"
        status: PUBLISHED
        parameters:
          - name: customer
            type: STRING
            required: true
            default: there
      - versionNumber: "1.1.0"
        parent: "1.0.0"
        content: "Hello {{customer}}"
        status: REVIEW
        parameters:
          - name: customer
            type: STRING
`

func setupTestDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	tables := []interface{}{&models.PromptTemplate{}, &models.PromptVersion{}, &models.PromptParameter{}, &models.VersionAuditEntry{}}
	db.Migrator().DropTable(tables...)
	require.NoError(t, db.AutoMigrate(tables...))
	database.DB = db
	database.RedisClient = nil
}

func TestParseFixtureRejectsUnknownParent(t *testing.T) {
	_, err := ParseFixture([]byte(`
templates:
  - name: broken
    versions:
      - versionNumber: "1.1.0"
        parent: "1.0.0"
        content: x
`))
	assert.ErrorContains(t, err, "before it is declared")

	_, err = ParseFixture([]byte(`
templates:
  - name: broken
    versions:
      - versionNumber: "1.0.0"
        content: x
        status: SHIPPED
`))
	assert.ErrorContains(t, err, "unknown status")
}

func TestApplyFixture(t *testing.T) {
	setupTestDB(t)

	fixture, err := ParseFixture([]byte(sampleFixture))
	require.NoError(t, err)

	report, err := Apply(fixture, "seed")
	require.NoError(t, err)
	assert.Equal(t, Report{TemplatesCreated: 1, VersionsCreated: 2}, report)

	history, err := services.GetVersionHistory(firstTemplateID(t))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.VersionStatusPublished, history[0].Status)
	assert.Equal(t, models.VersionStatusReview, history[1].Status)
	assert.Equal(t, history[0].ID, history[1].ParentID())

	report, err = Apply(fixture, "seed")
	require.NoError(t, err)
	assert.Equal(t, Report{TemplatesSkipped: 1}, report)
}

func TestApplyFixtureValidationError(t *testing.T) {
	setupTestDB(t)

	fixture, err := ParseFixture([]byte(`
templates:
  - name: invalid
    versions:
      - versionNumber: "1.0.0"
        content: ""
`))
	require.NoError(t, err)

	_, err = Apply(fixture, "seed")
	var verr *lifecycle.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoadFixtureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixture), 0o600))

	fixture, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fixture.Templates, 1)
	assert.Len(t, fixture.Templates[0].Versions, 2)

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStatusPathReachesTarget(t *testing.T) {
	for _, target := range models.VersionStatuses {
		current := models.VersionStatusDraft
		for _, step := range statusPath(target) {
			next, err := lifecycle.Transition(current, step)
			require.NoError(t, err)
			current = next
		}
		assert.Equal(t, target, current)
	}

	assert.Empty(t, statusPath(models.VersionStatusDraft))
	assert.Equal(t, []models.VersionStatus{
		models.VersionStatusReview, models.VersionStatusPublished, models.VersionStatusArchived,
	}, statusPath(models.VersionStatusArchived))
}

func firstTemplateID(t *testing.T) string {
	var tmpl models.PromptTemplate
	require.NoError(t, database.DB.First(&tmpl).Error)
	return tmpl.ID
}
