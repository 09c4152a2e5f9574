package main

import (
	"fmt"
	"promptops-backend/config"
	"promptops-backend/internal/database"
	"promptops-backend/internal/models"
	"promptops-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixtureFile string
	actor       string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load prompt templates and versions from a YAML fixture",
	Long: `Seed reads a YAML fixture of templates and their versions and creates
them through the same services the API uses, so validation, lineage and
status rules apply. Templates that already exist are skipped.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := LoadFixture(fixtureFile)
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "fixture ok: %d templates\n", len(fixture.Templates))
			return nil
		}

		if err := connect(); err != nil {
			return err
		}
		defer database.Close()

		report, err := Apply(fixture, actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "templates created: %d, skipped: %d, versions created: %d\n",
			report.TemplatesCreated, report.TemplatesSkipped, report.VersionsCreated)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&fixtureFile, "file", "f", "fixtures/templates.yaml", "fixture file to load")
	rootCmd.Flags().StringVar(&actor, "actor", "seed", "name recorded as creator of the seeded data")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and validate the fixture without writing")
}

func connect() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return err
	}

	if _, err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Warn("redis unavailable, seeding without cache invalidation", zap.Error(err))
	}

	return database.DB.AutoMigrate(
		&models.User{},
		&models.PromptTemplate{},
		&models.PromptVersion{},
		&models.PromptParameter{},
		&models.VersionAuditEntry{},
	)
}
