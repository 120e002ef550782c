package datasource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSource reads datasets from a local directory.
type FileSource struct {
	Dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Fetch reads the named file from the source directory.
func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
	}
	return data, nil
}

// Ping checks that the source directory exists.
func (s *FileSource) Ping(ctx context.Context) error {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", s.Dir)
	}
	return nil
}
