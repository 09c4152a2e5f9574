package version_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"promptops-backend/internal/api/v1/version"
	"promptops-backend/internal/database"
	"promptops-backend/internal/lifecycle"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"
	"promptops-backend/internal/utils"
	"promptops-backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*miniredis.Miniredis, *models.PromptTemplate) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	tables := []interface{}{&models.PromptTemplate{}, &models.PromptVersion{}, &models.PromptParameter{}, &models.VersionAuditEntry{}}
	db.Migrator().DropTable(tables...)
	require.NoError(t, db.AutoMigrate(tables...))
	database.DB = db

	mr, err := miniredis.Run()
	require.NoError(t, err)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	tmpl, err := services.CreatePromptTemplate("tester", services.TemplateInput{Name: "handler-template"})
	require.NoError(t, err)
	return mr, tmpl
}

func newContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func withID(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

func decodeVersion(t *testing.T, w *httptest.ResponseRecorder) models.PromptVersion {
	var resp struct {
		Data models.PromptVersion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestCreateVersion(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	c, w := newContext("POST", "/api/v1/versions", version.CreateVersionRequest{
		TemplateID:    tmpl.ID,
		VersionNumber: "1.0.0",
		Content:       "Translate {{text}}",
		Parameters: []models.PromptParameter{
			{Name: "text", ParameterType: models.ParameterTypeString},
		},
	})
	c.Set("user", models.User{Username: "alice"})
	version.CreateVersion(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	created := decodeVersion(t, w)
	assert.Equal(t, models.VersionStatusDraft, created.Status)
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, "handler-template", created.TemplateName)
}

func TestCreateVersionValidationErrors(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	c, w := newContext("POST", "/api/v1/versions", version.CreateVersionRequest{
		TemplateID:    tmpl.ID,
		VersionNumber: "1.0.0",
		Content:       "x",
		Parameters: []models.PromptParameter{
			{Name: "a", ParameterType: models.ParameterTypeString},
			{Name: "a", ParameterType: models.ParameterTypeString},
		},
	})
	version.CreateVersion(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Data utils.ValidationErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "parameters[1].name", resp.Data.Errors[0].Field)
}

func TestUpdateStatus(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	v, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.0.0", Content: "x"})
	require.NoError(t, err)

	c, w := newContext("POST", "/api/v1/versions/"+v.ID+"/status", version.StatusUpdateRequest{Status: models.VersionStatusPublished})
	withID(c, v.ID)
	version.UpdateStatus(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "cannot transition from DRAFT to PUBLISHED")

	c, w = newContext("POST", "/api/v1/versions/"+v.ID+"/status", version.StatusUpdateRequest{Status: models.VersionStatusReview, Comment: "please review"})
	withID(c, v.ID)
	version.UpdateStatus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VersionStatusReview, decodeVersion(t, w).Status)

	c, w = newContext("POST", "/api/v1/versions/"+v.ID+"/status", map[string]string{"status": "SHIPPED"})
	withID(c, v.ID)
	version.UpdateStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateVersionRequiresDraft(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	v, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.0.0", Content: "x"})
	require.NoError(t, err)

	content := "edited"
	c, w := newContext("PUT", "/api/v1/versions/"+v.ID, version.UpdateVersionRequest{Content: &content})
	withID(c, v.ID)
	version.UpdateVersion(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", decodeVersion(t, w).Content)

	_, err = services.UpdateVersionStatus(v.ID, models.VersionStatusReview, "", "tester")
	require.NoError(t, err)

	c, w = newContext("PUT", "/api/v1/versions/"+v.ID, version.UpdateVersionRequest{Content: &content})
	withID(c, v.ID)
	version.UpdateVersion(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBranchWithoutBody(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	parent, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.0.0", Content: "base"})
	require.NoError(t, err)

	c, w := newContext("POST", "/api/v1/versions/"+parent.ID+"/branch", nil)
	withID(c, parent.ID)
	version.CreateBranch(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	branch := decodeVersion(t, w)
	assert.Equal(t, "1.1.0", branch.VersionNumber)
	assert.Equal(t, "base", branch.Content)
	assert.Equal(t, parent.ID, branch.ParentID())
}

func TestCreateBranchEmptyParameters(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	parent, err := services.CreatePromptVersion("tester", services.VersionInput{
		TemplateID:    tmpl.ID,
		VersionNumber: "1.0.0",
		Content:       "Hi {{name}}",
		Parameters:    []models.PromptParameter{{Name: "name", ParameterType: models.ParameterTypeString}},
	})
	require.NoError(t, err)

	c, w := newContext("POST", "/api/v1/versions/"+parent.ID+"/branch", map[string]interface{}{
		"parameters": []interface{}{},
	})
	withID(c, parent.ID)
	version.CreateBranch(c)

	require.Equal(t, http.StatusCreated, w.Code)
	branch := decodeVersion(t, w)
	assert.Empty(t, branch.Parameters)

	c, w = newContext("POST", "/api/v1/versions/"+parent.ID+"/branch", map[string]interface{}{
		"versionNumber": "1.2.0",
	})
	withID(c, parent.ID)
	version.CreateBranch(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, decodeVersion(t, w).Parameters, 1)
}

func TestCompareVersions(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	a, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.0.0", Content: "one\ntwo"})
	require.NoError(t, err)
	b, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.1.0", Content: "one\nthree"})
	require.NoError(t, err)

	c, w := newContext("GET", "/api/v1/versions/compare?sourceId="+a.ID+"&targetId="+b.ID, nil)
	version.CompareVersions(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data lifecycle.ComparisonResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, lifecycle.DiffStats{Added: 1, Removed: 1, Unchanged: 1}, resp.Data.Stats)
	require.Len(t, resp.Data.ContentDiff, 3)
	assert.Equal(t, lifecycle.DiffRemoved, resp.Data.ContentDiff[1].Type)
	assert.Equal(t, lifecycle.DiffAdded, resp.Data.ContentDiff[2].Type)

	c, w = newContext("GET", "/api/v1/versions/compare?sourceId="+a.ID, nil)
	version.CompareVersions(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRollbackAndLineage(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	source, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.0.0", Content: "v1"})
	require.NoError(t, err)

	c, w := newContext("POST", "/api/v1/versions/"+source.ID+"/rollback", map[string]string{"comment": "restore"})
	withID(c, source.ID)
	version.RollbackVersion(c)
	require.Equal(t, http.StatusCreated, w.Code)
	restored := decodeVersion(t, w)
	assert.Equal(t, "v1", restored.Content)

	c, w = newContext("GET", "/api/v1/versions/"+restored.ID+"/lineage", nil)
	withID(c, restored.ID)
	version.GetLineage(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data services.VersionLineage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Lineage, 2)
	assert.Equal(t, source.ID, resp.Data.Lineage[0].ID)
	assert.Equal(t, restored.ID, resp.Data.Lineage[1].ID)

	c, w = newContext("GET", "/api/v1/versions/"+restored.ID+"/audit-trail", nil)
	withID(c, restored.ID)
	version.GetAuditTrail(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actionType":"ROLLBACK"`)
}

func TestTransitionQueries(t *testing.T) {
	mr, tmpl := setupTest(t)
	defer mr.Close()

	v, err := services.CreatePromptVersion("tester", services.VersionInput{TemplateID: tmpl.ID, VersionNumber: "1.0.0", Content: "x"})
	require.NoError(t, err)

	c, w := newContext("GET", "/api/v1/versions/"+v.ID+"/status-transitions", nil)
	withID(c, v.ID)
	version.GetStatusTransitions(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"DRAFT":["REVIEW"]}`, string(extractData(t, w)))

	c, w = newContext("GET", "/api/v1/versions/"+v.ID+"/can-transition?status=REVIEW", nil)
	withID(c, v.ID)
	version.CanTransition(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", string(extractData(t, w)))

	c, w = newContext("GET", "/api/v1/versions/"+v.ID+"/can-transition?status=SHIPPED", nil)
	withID(c, v.ID)
	version.CanTransition(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext("GET", "/api/v1/versions/missing/can-transition?status=REVIEW", nil)
	withID(c, "missing")
	version.CanTransition(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func extractData(t *testing.T, w *httptest.ResponseRecorder) json.RawMessage {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}
