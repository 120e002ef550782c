package datasource

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/wardlens/internal/repository"
)

// RepositorySource serves datasets stored in Postgres.
type RepositorySource struct {
	repo repository.DatasetRepository
}

// NewRepositorySource wraps a dataset repository.
func NewRepositorySource(repo repository.DatasetRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

// Fetch returns the stored payload for name.
func (s *RepositorySource) Fetch(ctx context.Context, name string) ([]byte, error) {
	ds, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", name, err)
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	return ds.Payload, nil
}

// Ping checks the database connection.
func (s *RepositorySource) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
