package database

import (
	"context"
	"fmt"
	"promptops-backend/config"
	"promptops-backend/pkg/logger"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the Postgres connection, retrying while the database comes up.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB

	err := retry.Do(
		func() error {
			conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
				Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
				TranslateError: true,
			})
			if err != nil {
				return err
			}
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(context.Background()); err != nil {
				return err
			}
			db = conn
			return nil
		},
		retry.Attempts(uint(max(cfg.ConnectAttempts, 1))),
		retry.Delay(cfg.ConnectDelay),
		retry.OnRetry(func(n uint, err error) {
			logger.Log.Warn("database not ready, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return db, nil
}
