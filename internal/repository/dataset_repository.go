package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/wardlens/internal/database"
	"github.com/stwalsh4118/wardlens/internal/models"
)

// DatasetRepository stores raw dataset payloads.
type DatasetRepository interface {
	// FindByName returns the dataset with the given name.
	// Returns nil, nil if it does not exist.
	FindByName(ctx context.Context, name string) (*models.Dataset, error)

	// Upsert inserts or replaces a dataset payload. The payload must be
	// valid JSON.
	Upsert(ctx context.Context, name string, payload []byte) error

	// List returns every stored dataset without payloads, ordered by name.
	List(ctx context.Context) ([]models.DatasetInfo, error)

	// Ping checks the underlying connection.
	Ping(ctx context.Context) error
}

type datasetRepository struct {
	db *database.Database
}

// NewDatasetRepository creates a DatasetRepository backed by db.
func NewDatasetRepository(db *database.Database) DatasetRepository {
	return &datasetRepository{db: db}
}

func (r *datasetRepository) FindByName(ctx context.Context, name string) (*models.Dataset, error) {
	const query = `SELECT name, payload, updated_at FROM datasets WHERE name = $1`

	var ds models.Dataset
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&ds.Name, &payload, &ds.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query dataset %q: %w", name, err)
	}
	ds.Payload = json.RawMessage(payload)
	return &ds, nil
}

func (r *datasetRepository) Upsert(ctx context.Context, name string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("dataset %q payload is not valid JSON", name)
	}

	const query = `
		INSERT INTO datasets (name, payload, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Pool.Exec(ctx, query, name, string(payload)); err != nil {
		return fmt.Errorf("failed to upsert dataset %q: %w", name, err)
	}
	return nil
}

func (r *datasetRepository) List(ctx context.Context) ([]models.DatasetInfo, error) {
	const query = `SELECT name, octet_length(payload::text), updated_at FROM datasets ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	out := []models.DatasetInfo{}
	for rows.Next() {
		var info models.DatasetInfo
		if err := rows.Scan(&info.Name, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset rows: %w", err)
	}
	return out, nil
}

func (r *datasetRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
