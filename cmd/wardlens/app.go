package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stwalsh4118/wardlens/internal/config"
	"github.com/stwalsh4118/wardlens/internal/database"
	"github.com/stwalsh4118/wardlens/internal/datasource"
	"github.com/stwalsh4118/wardlens/internal/logger"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/repository"
	"github.com/stwalsh4118/wardlens/internal/services"
)

// app holds the wired components shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.Database
	loader  *datasource.Loader
	service services.AnalysisService
}

// loadConfig reads the environment and builds the logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.NewWithLevel(cfg.Server.Env, cfg.Server.LogLevel), nil
}

// newApp connects the configured data source and builds the analysis service.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	source, err := a.newSource(ctx)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Districts.Location()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load incident time zone: %w", err)
	}

	cache := datasource.NewMemoryCache(cfg.Data.CacheTTL, cfg.Data.CacheCleanupInterval)
	a.loader = datasource.NewLoader(source, cache, datasource.LoaderConfig{
		Timeout:    cfg.Data.FetchTimeout,
		Retries:    cfg.Data.FetchRetries,
		RetryDelay: datasource.DefaultRetryDelay,
	}, log)

	a.service = services.NewAnalysisService(a.loader, services.Options{
		Districts:   districtPair(cfg.Districts),
		Catalog:     catalog(cfg.Datasets),
		PostalCodes: cfg.Districts.PostalCodes,
		Location:    loc,
		TopOffenses: cfg.Districts.TopOffenses,
	}, log)

	return a, nil
}

func (a *app) newSource(ctx context.Context) (datasource.Source, error) {
	switch a.cfg.Data.Source {
	case config.SourceHTTP:
		a.log.Info("Reading datasets over HTTP", map[string]interface{}{"base_url": a.cfg.Data.BaseURL})
		return datasource.NewHTTPSource(a.cfg.Data.BaseURL, &http.Client{}), nil
	case config.SourcePostgres:
		db, err := database.NewPostgresPool(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		a.log.Info("Database connection established", map[string]interface{}{
			"host":     a.cfg.Database.Host,
			"port":     a.cfg.Database.Port,
			"database": a.cfg.Database.Name,
			"pool_min": a.cfg.Database.PoolMin,
			"pool_max": a.cfg.Database.PoolMax,
		})
		return datasource.NewRepositorySource(repository.NewDatasetRepository(db)), nil
	default:
		a.log.Info("Reading datasets from disk", map[string]interface{}{"dir": a.cfg.Data.Dir})
		return datasource.NewFileSource(a.cfg.Data.Dir), nil
	}
}

func (a *app) close() {
	if a.loader != nil {
		a.loader.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func districtPair(cfg config.DistrictConfig) models.DistrictPair {
	return models.NewDistrictPair(cfg.A, cfg.B, cfg.Label)
}

func catalog(cfg config.DatasetConfig) datasource.Catalog {
	return datasource.Catalog{
		Economic:    cfg.Economic,
		Housing:     cfg.Housing,
		Social:      cfg.Social,
		Demographic: cfg.Demographic,
		Retailers:   cfg.Retailers,
		FoodAccess:  cfg.FoodAccess,
		Incidents:   cfg.Incidents,
		Boundaries:  cfg.Boundaries,
	}
}
