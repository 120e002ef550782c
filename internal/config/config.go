package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data source kinds.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Districts DistrictConfig
	Datasets  DatasetConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	Env             string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// DataConfig controls where raw datasets come from and how they are cached.
type DataConfig struct {
	Source               string
	Dir                  string
	BaseURL              string
	Watch                bool
	FetchTimeout         time.Duration
	FetchRetries         int
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// DistrictConfig describes the compared districts.
type DistrictConfig struct {
	A           int
	B           int
	Label       string
	PostalCodes []string
	Timezone    string
	TopOffenses int
}

// Location loads the incident time zone.
func (d DistrictConfig) Location() (*time.Location, error) {
	return time.LoadLocation(d.Timezone)
}

// DatasetConfig holds the file names of each raw dataset.
type DatasetConfig struct {
	Economic    string
	Housing     string
	Social      string
	Demographic string
	Retailers   string
	FoodAccess  string
	Incidents   string
	Boundaries  string
}

// Load reads configuration from environment variables, applying defaults
// that match the published ward datasets.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "30s")

	v.SetDefault("DATA_SOURCE", SourceFile)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DATA_BASE_URL", "")
	v.SetDefault("DATA_WATCH", false)
	v.SetDefault("FETCH_TIMEOUT", "15s")
	v.SetDefault("FETCH_RETRIES", 1)
	v.SetDefault("CACHE_TTL", "0s")
	v.SetDefault("CACHE_CLEANUP_INTERVAL", "10m")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "wardlens")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)

	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("DISTRICT_A", 7)
	v.SetDefault("DISTRICT_B", 8)
	v.SetDefault("DISTRICT_LABEL", "Ward")
	v.SetDefault("POSTAL_CODES", "20019,20020,20032")
	v.SetDefault("INCIDENT_TIMEZONE", "America/New_York")
	v.SetDefault("TOP_OFFENSES", 8)

	v.SetDefault("DATASET_ECONOMIC", "ward7-8_acs_economic_5year_20251103.json")
	v.SetDefault("DATASET_HOUSING", "ward7-8_acs_housing_5year_20251103.json")
	v.SetDefault("DATASET_SOCIAL", "ward7-8_acs_social_5year_20251103.json")
	v.SetDefault("DATASET_DEMOGRAPHIC", "ward7-8_acs_demographic_5year_20251103.json")
	v.SetDefault("DATASET_RETAILERS", "ward7-8_snap_retailers_20251103.json")
	v.SetDefault("DATASET_FOOD_ACCESS", "dc_all_food_access_atlas_20251103.json")
	v.SetDefault("DATASET_INCIDENTS", "ward7-8_crime_incidents_2020-2025_combined_20251103.json")
	v.SetDefault("DATASET_BOUNDARIES", "dc_ward_boundaries_2022.geojson")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			Env:             v.GetString("ENV"),
			LogLevel:        v.GetString("LOG_LEVEL"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Data: DataConfig{
			Source:               strings.ToLower(v.GetString("DATA_SOURCE")),
			Dir:                  v.GetString("DATA_DIR"),
			BaseURL:              v.GetString("DATA_BASE_URL"),
			Watch:                v.GetBool("DATA_WATCH"),
			FetchTimeout:         v.GetDuration("FETCH_TIMEOUT"),
			FetchRetries:         v.GetInt("FETCH_RETRIES"),
			CacheTTL:             v.GetDuration("CACHE_TTL"),
			CacheCleanupInterval: v.GetDuration("CACHE_CLEANUP_INTERVAL"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseList(v.GetString("CORS_ORIGINS")),
		},
		Districts: DistrictConfig{
			A:           v.GetInt("DISTRICT_A"),
			B:           v.GetInt("DISTRICT_B"),
			Label:       v.GetString("DISTRICT_LABEL"),
			PostalCodes: parseList(v.GetString("POSTAL_CODES")),
			Timezone:    v.GetString("INCIDENT_TIMEZONE"),
			TopOffenses: v.GetInt("TOP_OFFENSES"),
		},
		Datasets: DatasetConfig{
			Economic:    v.GetString("DATASET_ECONOMIC"),
			Housing:     v.GetString("DATASET_HOUSING"),
			Social:      v.GetString("DATASET_SOCIAL"),
			Demographic: v.GetString("DATASET_DEMOGRAPHIC"),
			Retailers:   v.GetString("DATASET_RETAILERS"),
			FoodAccess:  v.GetString("DATASET_FOOD_ACCESS"),
			Incidents:   v.GetString("DATASET_INCIDENTS"),
			Boundaries:  v.GetString("DATASET_BOUNDARIES"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Server.Port)
	}

	if err := c.validateData(); err != nil {
		return err
	}

	if c.Data.Source == SourcePostgres {
		if err := c.validateDatabase(); err != nil {
			return err
		}
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return c.validateDistricts()
}

func (c *Config) validateData() error {
	switch c.Data.Source {
	case SourceFile:
		if c.Data.Dir == "" {
			return fmt.Errorf("DATA_DIR is required when DATA_SOURCE=file")
		}
	case SourceHTTP:
		if c.Data.BaseURL == "" {
			return fmt.Errorf("DATA_BASE_URL is required when DATA_SOURCE=http")
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("DATA_SOURCE must be one of file, http, postgres, got %q", c.Data.Source)
	}

	if c.Data.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.Data.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must be non-negative")
	}
	if c.Data.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must be non-negative")
	}
	if c.Data.CacheCleanupInterval < 0 {
		return fmt.Errorf("CACHE_CLEANUP_INTERVAL must be non-negative")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

func (c *Config) validateDistricts() error {
	d := c.Districts
	if d.A <= 0 || d.B <= 0 {
		return fmt.Errorf("DISTRICT_A and DISTRICT_B must be positive")
	}
	if d.A == d.B {
		return fmt.Errorf("DISTRICT_A and DISTRICT_B must differ")
	}
	if d.Label == "" {
		return fmt.Errorf("DISTRICT_LABEL is required")
	}
	if d.TopOffenses < 1 {
		return fmt.Errorf("TOP_OFFENSES must be at least 1")
	}
	if _, err := d.Location(); err != nil {
		return fmt.Errorf("INCIDENT_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// parseList splits a comma-separated string into trimmed, non-empty parts.
func parseList(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
