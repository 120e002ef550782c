package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/wardlens/internal/config"
	"github.com/stwalsh4118/wardlens/internal/database"
)

func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "wardlens"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  1,
		PoolMax:  5,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestRepository connects to the test database and migrates it,
// skipping when no database is reachable.
func setupTestRepository(t *testing.T) (DatasetRepository, *database.Database) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Skipf("Skipping integration test, database unavailable: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))

	return NewDatasetRepository(db), db
}

func TestDatasetRepository_RoundTrip(t *testing.T) {
	repo, db := setupTestRepository(t)
	defer db.Close()

	ctx := context.Background()
	name := "test_" + time.Now().Format("20060102150405.000000") + ".json"
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM datasets WHERE name = $1`, name)
	})

	missing, err := repo.FindByName(ctx, name)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Upsert(ctx, name, []byte(`[{"GEOID":"11007"}]`)))
	require.NoError(t, repo.Upsert(ctx, name, []byte(`[{"GEOID":"11008"}]`)))

	got, err := repo.FindByName(ctx, name)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, name, got.Name)
	assert.JSONEq(t, `[{"GEOID":"11008"}]`, string(got.Payload))
	assert.False(t, got.UpdatedAt.IsZero())

	list, err := repo.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, info := range list {
		if info.Name == name {
			found = true
			assert.Positive(t, info.Size)
		}
	}
	assert.True(t, found)

	assert.NoError(t, repo.Ping(ctx))
}

func TestDatasetRepository_RejectsInvalidJSON(t *testing.T) {
	repo := NewDatasetRepository(nil)
	err := repo.Upsert(context.Background(), "bad.json", []byte(`{not json`))
	assert.Error(t, err)
}
