package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"promptops-backend/config"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	tables := []interface{}{&models.User{}, &models.PromptTemplate{}, &models.PromptVersion{}, &models.PromptParameter{}, &models.VersionAuditEntry{}}
	db.Migrator().DropTable(tables...)
	require.NoError(t, db.AutoMigrate(tables...))
	database.DB = db

	mr, err := miniredis.Run()
	require.NoError(t, err)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewRouter(&config.Config{AllowedOrigins: []string{"http://localhost:5173"}}), mr
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req, _ := http.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataID(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestVersionWorkflow(t *testing.T) {
	r, mr := setupRouter(t)
	defer mr.Close()

	w := do(r, "POST", "/api/v1/templates", map[string]string{"name": "workflow", "category": "demo"})
	require.Equal(t, http.StatusCreated, w.Code)
	templateID := dataID(t, w)

	w = do(r, "POST", "/api/v1/versions", map[string]string{"templateId": templateID, "versionNumber": "1.0.0", "content": "Hello"})
	require.Equal(t, http.StatusCreated, w.Code)
	first := dataID(t, w)

	for _, status := range []string{"REVIEW", "PUBLISHED"} {
		w = do(r, "POST", "/api/v1/versions/"+first+"/status", map[string]string{"status": status})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = do(r, "POST", "/api/v1/versions/"+first+"/branch", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	second := dataID(t, w)

	for _, status := range []string{"REVIEW", "PUBLISHED"} {
		w = do(r, "POST", "/api/v1/versions/"+second+"/status", map[string]string{"status": status})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = do(r, "GET", "/api/v1/versions/"+first, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ARCHIVED"`)

	w = do(r, "POST", "/api/v1/versions/"+first+"/rollback", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, "GET", "/api/v1/templates/"+templateID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"versionCount":2`)
	assert.Contains(t, w.Body.String(), `"hasPublishedVersion":true`)

	w = do(r, "GET", "/api/v1/templates/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"demo"`)
}

func TestRouterRejectsInvalidToken(t *testing.T) {
	r, mr := setupRouter(t)
	defer mr.Close()

	req, _ := http.NewRequest("GET", "/api/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
