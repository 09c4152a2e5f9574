package main

import (
	"log"
	"promptops-backend/config"
	"promptops-backend/internal/api"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"
	"promptops-backend/pkg/logger"

	"go.uber.org/zap"
)

// @title promptops-backend API
// @version 1.0
// @description Prompt template and version management service.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(cfg.Logging()); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if _, err := database.Connect(cfg); err != nil {
		logger.Log.Fatal("database unavailable", zap.Error(err))
	}
	if err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Fatal("redis unavailable", zap.Error(err))
	}
	defer database.Close()

	// Migrate the schema
	err = database.DB.AutoMigrate(
		&models.User{},
		&models.PromptTemplate{},
		&models.PromptVersion{},
		&models.PromptParameter{},
		&models.VersionAuditEntry{},
	)
	if err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}

	initAdminUser(cfg)

	router := api.NewRouter(cfg)
	logger.Log.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Log.Fatal("failed to run server", zap.Error(err))
	}
}

func initAdminUser(cfg *config.Config) {
	if cfg.AdminPassword == "" {
		logger.Log.Info("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}

	admin, err := services.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Log.Fatal("failed to create admin user", zap.Error(err))
	}
	if admin != nil {
		logger.Log.Info("admin user created", zap.String("username", admin.Username))
	}
}
