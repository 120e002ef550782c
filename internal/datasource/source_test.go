package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/wardlens/internal/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain file", "ward7-8_snap_retailers_20251103.json", true},
		{"nested", "acs/economic.json", true},
		{"empty", "", false},
		{"parent", "../secrets.json", false},
		{"nested parent", "acs/../../x.json", false},
		{"absolute", "/etc/passwd", false},
		{"backslash", `..\x.json`, false},
		{"dot", ".", false},
		{"unclean", "acs//economic.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidName)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "econ.json"), []byte(`[{"GEOID":"1"}]`), 0o644))
	src := NewFileSource(dir)
	ctx := context.Background()

	t.Run("reads file", func(t *testing.T) {
		data, err := src.Fetch(ctx, "econ.json")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"GEOID":"1"}]`, string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := src.Fetch(ctx, "missing.json")
		assert.ErrorIs(t, err, ErrDatasetNotFound)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := src.Fetch(ctx, "../econ.json")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := src.Fetch(cctx, "econ.json")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, src.Ping(ctx))
		assert.Error(t, NewFileSource(filepath.Join(dir, "nope")).Ping(ctx))
		assert.Error(t, NewFileSource(filepath.Join(dir, "econ.json")).Ping(ctx))
	})
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/econ.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"GEOID":"1"}]`))
		case "/data/broken.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/data", srv.Client())
	ctx := context.Background()

	data, err := src.Fetch(ctx, "econ.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"GEOID":"1"}]`, string(data))

	_, err = src.Fetch(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = src.Fetch(ctx, "broken.json")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "broken.json", statusErr.Dataset)

	_, err = src.Fetch(ctx, "../econ.json")
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.NoError(t, src.Ping(ctx))
	srv.Client().CloseIdleConnections()
}

func TestHTTPSource_PayloadLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exact.json":
			_, _ = w.Write([]byte(`[1,2]`))
		default:
			_, _ = w.Write([]byte(`[1,2,3]`))
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, srv.Client())
	src.MaxBytes = 5
	ctx := context.Background()

	data, err := src.Fetch(ctx, "exact.json")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))

	_, err = src.Fetch(ctx, "large.json")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Contains(t, err.Error(), "large.json")
	srv.Client().CloseIdleConnections()
}

type mockDatasetRepository struct {
	mock.Mock
}

func (m *mockDatasetRepository) FindByName(ctx context.Context, name string) (*models.Dataset, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dataset), args.Error(1)
}

func (m *mockDatasetRepository) Upsert(ctx context.Context, name string, payload []byte) error {
	return m.Called(ctx, name, payload).Error(0)
}

func (m *mockDatasetRepository) List(ctx context.Context) ([]models.DatasetInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.DatasetInfo), args.Error(1)
}

func (m *mockDatasetRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestRepositorySource(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDatasetRepository)
	repo.On("FindByName", ctx, "econ.json").Return(&models.Dataset{Name: "econ.json", Payload: []byte(`[]`)}, nil)
	repo.On("FindByName", ctx, "missing.json").Return(nil, nil)
	repo.On("FindByName", ctx, "down.json").Return(nil, errors.New("connection refused"))
	repo.On("Ping", ctx).Return(nil)

	src := NewRepositorySource(repo)

	data, err := src.Fetch(ctx, "econ.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = src.Fetch(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = src.Fetch(ctx, "down.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDatasetNotFound)

	assert.NoError(t, src.Ping(ctx))
	repo.AssertExpectations(t)
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Dataset: "econ.json", Attempts: 2, Err: ErrFetchTimeout}
	assert.ErrorIs(t, err, ErrFetchTimeout)
	assert.Contains(t, err.Error(), "econ.json")
	assert.Contains(t, err.Error(), "2 attempt(s)")
}

func TestFailedDataset(t *testing.T) {
	fetchErr := &FetchError{Dataset: "a.json", Attempts: 2, Err: ErrFetchTimeout}
	decodeErr := &DecodeError{Dataset: "b.json", Err: errors.New("unexpected EOF")}

	assert.Equal(t, "a.json", FailedDataset(fmt.Errorf("wrapped: %w", fetchErr)))
	assert.Equal(t, "b.json", FailedDataset(fmt.Errorf("wrapped: %w", decodeErr)))
	assert.Empty(t, FailedDataset(errors.New("other")))
	assert.ErrorIs(t, decodeErr, decodeErr.Err)
	assert.Contains(t, decodeErr.Error(), "b.json")
}
