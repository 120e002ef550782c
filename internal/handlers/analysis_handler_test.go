package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stwalsh4118/wardlens/internal/datasource"
	"github.com/stwalsh4118/wardlens/internal/dictionary"
	apierrors "github.com/stwalsh4118/wardlens/internal/errors"
	"github.com/stwalsh4118/wardlens/internal/logger"
	"github.com/stwalsh4118/wardlens/internal/middleware"
	"github.com/stwalsh4118/wardlens/internal/models"
	"github.com/stwalsh4118/wardlens/internal/services"
)

// MockAnalysisService is a mock implementation of services.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) DistrictComparison(ctx context.Context, mode services.LoadMode) (*services.ComparisonBundle, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComparisonBundle), args.Error(1)
}

func (m *MockAnalysisService) FoodAccess(ctx context.Context, mode services.LoadMode) (*services.FoodAccessBundle, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FoodAccessBundle), args.Error(1)
}

func (m *MockAnalysisService) Incidents(ctx context.Context, mode services.LoadMode, q services.IncidentQuery) (*services.IncidentBundle, error) {
	args := m.Called(ctx, mode, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.IncidentBundle), args.Error(1)
}

func (m *MockAnalysisService) DomainMetrics(ctx context.Context, mode services.LoadMode, domain dictionary.Domain, category string) (*services.MetricsBundle, error) {
	args := m.Called(ctx, mode, domain, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MetricsBundle), args.Error(1)
}

func (m *MockAnalysisService) DataDictionary(ctx context.Context, mode services.LoadMode) (*services.DictionaryBundle, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DictionaryBundle), args.Error(1)
}

func (m *MockAnalysisService) MapLayers(ctx context.Context, mode services.LoadMode, q services.MapQuery) (*services.MapLayersBundle, error) {
	args := m.Called(ctx, mode, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MapLayersBundle), args.Error(1)
}

func (m *MockAnalysisService) Dictionary() *dictionary.Dictionary {
	return dictionary.Default()
}

func (m *MockAnalysisService) Districts() models.DistrictPair {
	return models.NewDistrictPair(7, 8, "Ward")
}

func (m *MockAnalysisService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAnalysisService) FlushCache() {
	m.Called()
}

func setupAnalysisRouter(svc *MockAnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	RegisterRoutes(router, NewHealthHandler(svc, "test", svc.Districts()), NewAnalysisHandler(svc))
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var response apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestComparison(t *testing.T) {
	t.Run("blocks by default", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("DistrictComparison", mock.Anything, services.Block).
			Return(&services.ComparisonBundle{Districts: []models.DistrictComparison{}}, nil)

		w := get(setupAnalysisRouter(svc), "/api/v1/districts/comparison")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isLoading":false`)
		svc.AssertExpectations(t)
	})

	t.Run("wait=false answers 202 while loading", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("DistrictComparison", mock.Anything, services.NonBlocking).
			Return(&services.ComparisonBundle{IsLoading: true}, nil)

		w := get(setupAnalysisRouter(svc), "/api/v1/districts/comparison?wait=false")

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"isLoading":true`)
		svc.AssertExpectations(t)
	})

	t.Run("invalid wait value", func(t *testing.T) {
		svc := new(MockAnalysisService)

		w := get(setupAnalysisRouter(svc), "/api/v1/districts/comparison?wait=maybe")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, w).Error.Code)
		svc.AssertNotCalled(t, "DistrictComparison", mock.Anything, mock.Anything)
	})

	t.Run("dataset unavailable", func(t *testing.T) {
		svc := new(MockAnalysisService)
		fetchErr := &datasource.FetchError{Dataset: "econ.json", Attempts: 2, Err: datasource.ErrFetchTimeout}
		svc.On("DistrictComparison", mock.Anything, services.Block).
			Return(nil, errors.Join(services.ErrDatasetUnavailable, fetchErr))

		w := get(setupAnalysisRouter(svc), "/api/v1/districts/comparison")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, apierrors.ErrDatasetUnavailable, response.Error.Code)
		assert.Equal(t, "econ.json", response.Error.Details["dataset"])
		assert.NotEmpty(t, response.Error.RequestID)
	})

	t.Run("malformed dataset names the dataset", func(t *testing.T) {
		svc := new(MockAnalysisService)
		decodeErr := &datasource.DecodeError{Dataset: "social.json", Err: errors.New("unexpected EOF")}
		svc.On("DistrictComparison", mock.Anything, services.Block).
			Return(nil, fmt.Errorf("%w: %w", services.ErrDatasetUnavailable, decodeErr))

		w := get(setupAnalysisRouter(svc), "/api/v1/districts/comparison")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "social.json", decodeError(t, w).Error.Details["dataset"])
	})

	t.Run("unexpected error", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("DistrictComparison", mock.Anything, services.Block).Return(nil, errors.New("boom"))

		w := get(setupAnalysisRouter(svc), "/api/v1/districts/comparison")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

func TestFoodAccess(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("FoodAccess", mock.Anything, services.Block).Return(&services.FoodAccessBundle{}, nil)

	w := get(setupAnalysisRouter(svc), "/api/v1/food-access?wait=true")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestIncidents(t *testing.T) {
	t.Run("passes query values", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("Incidents", mock.Anything, services.Block, services.IncidentQuery{Top: 5, Year: 2024}).
			Return(&services.IncidentBundle{}, nil)

		w := get(setupAnalysisRouter(svc), "/api/v1/incidents?top=5&year=2024")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects top out of range", func(t *testing.T) {
		svc := new(MockAnalysisService)

		w := get(setupAnalysisRouter(svc), "/api/v1/incidents?top=0&year=1800")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, response.Error.Code)
		assert.Contains(t, response.Error.Details, "Year")
	})

	t.Run("rejects non-numeric year", func(t *testing.T) {
		svc := new(MockAnalysisService)

		w := get(setupAnalysisRouter(svc), "/api/v1/incidents?year=abc")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, w).Error.Code)
	})

	t.Run("maps service validation errors", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("Incidents", mock.Anything, services.Block, services.IncidentQuery{Year: 2030}).
			Return(nil, services.ErrInvalidYear)

		w := get(setupAnalysisRouter(svc), "/api/v1/incidents?year=2030")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetrics(t *testing.T) {
	t.Run("known domain and category", func(t *testing.T) {
		svc := new(MockAnalysisService)
		svc.On("DomainMetrics", mock.Anything, services.NonBlocking, dictionary.Economic, "Income").
			Return(&services.MetricsBundle{Domain: dictionary.Economic, Category: "Income"}, nil)

		w := get(setupAnalysisRouter(svc), "/api/v1/metrics/Economic?category=Income&wait=false")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown domain", func(t *testing.T) {
		svc := new(MockAnalysisService)

		w := get(setupAnalysisRouter(svc), "/api/v1/metrics/weather")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("domain without survey extract", func(t *testing.T) {
		svc := new(MockAnalysisService)

		w := get(setupAnalysisRouter(svc), "/api/v1/metrics/food_access")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestExport(t *testing.T) {
	a, b := 10.0, 20.0
	gap := a - b
	svc := new(MockAnalysisService)
	svc.On("DomainMetrics", mock.Anything, services.Block, dictionary.Housing, "").
		Return(&services.MetricsBundle{
			Domain: dictionary.Housing,
			Metrics: []models.MetricComparison{
				{FieldCode: "DP04_0001E", Label: "Total housing units", ValueA: &a, ValueB: &b, Gap: &gap},
			},
		}, nil)

	w := get(setupAnalysisRouter(svc), "/api/v1/metrics/housing/export?wait=false")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "wardlens-housing-metrics.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Housing"}, f.GetSheetList())
	code, err := f.GetCellValue("Housing", "A2")
	require.NoError(t, err)
	assert.Equal(t, "DP04_0001E", code)
	svc.AssertExpectations(t)
}

func TestDictionary(t *testing.T) {
	svc := new(MockAnalysisService)

	w := get(setupAnalysisRouter(svc), "/api/v1/dictionary")

	require.Equal(t, http.StatusOK, w.Code)
	var response DictionaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Domains, len(dictionary.Domains))
	assert.NotEmpty(t, response.All)
	assert.NotEmpty(t, response.StoreTypes)
}

func TestDictionary_Category(t *testing.T) {
	svc := new(MockAnalysisService)
	categories := dictionary.Categories(dictionary.Default().All())
	require.NotEmpty(t, categories)
	category := categories[0]

	w := get(setupAnalysisRouter(svc), "/api/v1/dictionary?category="+url.QueryEscape(category))

	require.Equal(t, http.StatusOK, w.Code)
	var response DictionaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response.All)
	for _, f := range response.All {
		assert.Equal(t, category, f.Category)
	}
	assert.Equal(t, categories, response.Categories)
}

func TestDictionaryMetrics(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("DataDictionary", mock.Anything, services.Block).Return(&services.DictionaryBundle{}, nil)

	w := get(setupAnalysisRouter(svc), "/api/v1/dictionary/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestMapLayers(t *testing.T) {
	svc := new(MockAnalysisService)
	q := services.MapQuery{Year: 2024, Offense: "ROBBERY", StoreType: "Supermarket"}
	svc.On("MapLayers", mock.Anything, services.Block, q).Return(&services.MapLayersBundle{}, nil)

	w := get(setupAnalysisRouter(svc), "/api/v1/map/layers?year=2024&offense=ROBBERY&storeType=Supermarket")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestFlushCache(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("FlushCache").Return()

	w := httptest.NewRecorder()
	setupAnalysisRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestReadyUsesServicePing(t *testing.T) {
	svc := new(MockAnalysisService)
	svc.On("Ping", mock.Anything).Return(errors.New("down"))

	w := get(setupAnalysisRouter(svc), "/health/ready")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Economic", SheetName(dictionary.Economic))
	assert.Equal(t, "Food access", SheetName(dictionary.FoodAccess))
	assert.Equal(t, "", SheetName(""))
}
