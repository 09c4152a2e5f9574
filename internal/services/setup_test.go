package services

import (
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testModels = []interface{}{
	&models.User{},
	&models.PromptTemplate{},
	&models.PromptVersion{},
	&models.PromptParameter{},
	&models.VersionAuditEntry{},
}

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(testModels...)
	err = db.AutoMigrate(testModels...)
	if err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
}

func setupTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func strPtr(s string) *string {
	return &s
}

func mustTemplate(name, category string) *models.PromptTemplate {
	t, err := CreatePromptTemplate("tester", TemplateInput{Name: name, Category: category})
	if err != nil {
		panic(err)
	}
	return t
}

func mustVersion(templateID, number, content string) *models.PromptVersion {
	v, err := CreatePromptVersion("tester", VersionInput{
		TemplateID:    templateID,
		VersionNumber: number,
		Content:       content,
	})
	if err != nil {
		panic(err)
	}
	return v
}

// setStatus writes a status directly, skipping the transition rules.
func setStatus(id string, status models.VersionStatus) {
	database.DB.Model(&models.PromptVersion{}).Where("id = ?", id).Update("status", status)
}
