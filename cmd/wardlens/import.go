package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/wardlens/internal/config"
	"github.com/stwalsh4118/wardlens/internal/database"
	"github.com/stwalsh4118/wardlens/internal/datasource"
	"github.com/stwalsh4118/wardlens/internal/logger"
	"github.com/stwalsh4118/wardlens/internal/repository"
)

func importCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load local dataset files into Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Data.Dir
			}
			return runImport(cmd.Context(), cfg, dir, log)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory holding the dataset files (defaults to DATA_DIR)")
	return cmd
}

func runImport(ctx context.Context, cfg *config.Config, dir string, log *logger.Logger) error {
	if cfg.Database.Password == "" {
		return errors.New("DB_PASSWORD is required for import")
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	n, err := importDatasets(ctx, datasource.NewFileSource(dir), repository.NewDatasetRepository(db), catalog(cfg.Datasets).All(), log)
	if err != nil {
		return err
	}
	log.Info("Import finished", map[string]interface{}{"dir": dir, "datasets": n})
	return nil
}

// importDatasets copies every named dataset from src into repo. Missing
// files are skipped; any other failure stops the import.
func importDatasets(ctx context.Context, src datasource.Source, repo repository.DatasetRepository, names []string, log *logger.Logger) (int, error) {
	imported := 0
	for _, name := range names {
		data, err := src.Fetch(ctx, name)
		if errors.Is(err, datasource.ErrDatasetNotFound) {
			log.Warn("Dataset file missing, skipping", map[string]interface{}{"dataset": name})
			continue
		}
		if err != nil {
			return imported, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := repo.Upsert(ctx, name, data); err != nil {
			return imported, err
		}
		log.Info("Imported dataset", map[string]interface{}{"dataset": name, "bytes": len(data)})
		imported++
	}
	return imported, nil
}
