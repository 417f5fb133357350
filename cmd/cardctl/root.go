package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"arcana_lab/internal/config"
	"arcana_lab/internal/logging"
	"arcana_lab/internal/repository"
	"arcana_lab/internal/service"
)

// app はサブコマンド間で共有する依存です。PersistentPreRunE で組み立てます。
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	db         *gorm.DB
	catalog    service.CatalogService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cardctl",
		Short: "Maintenance jobs for the tarot card catalog",
		Long: `cardctl runs idempotent maintenance jobs against the card catalog:
schema migration, seeding the 78-card deck, filling authored meanings,
and resolving card image URLs. Every job is safe to re-run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "configs", "directory containing config.yaml")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newFillCmd(a),
		newBackfillReversedCmd(a),
		newSyncImagesCmd(a),
		newImportImagesCmd(a),
		newCheckCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger = logging.New(os.Stderr, cfg.Log.Level)
	slog.SetDefault(a.logger)

	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, a.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.catalog = service.NewCatalogService(db, repository.NewGormCardRepository(), cfg.App.PublicBasePath, a.logger)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
