package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/wardlens/internal/datasource"
	"github.com/stwalsh4118/wardlens/internal/dictionary"
	apierrors "github.com/stwalsh4118/wardlens/internal/errors"
	"github.com/stwalsh4118/wardlens/internal/export"
	"github.com/stwalsh4118/wardlens/internal/middleware"
	"github.com/stwalsh4118/wardlens/internal/services"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalysisHandler serves the dashboard views.
type AnalysisHandler struct {
	service services.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler instance.
func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// LoadRequest holds the query parameters shared by every analysis endpoint.
// wait=false asks for the loading bundle instead of blocking on fetches.
type LoadRequest struct {
	Wait *bool `form:"wait"`
}

// IncidentsRequest represents the query parameters for the incidents endpoint.
type IncidentsRequest struct {
	Wait *bool `form:"wait"`
	Top  int   `form:"top" binding:"omitempty,gte=1,lte=100"`
	Year int   `form:"year" binding:"omitempty,gte=1900,lte=2100"`
}

// MetricsRequest represents the query parameters for the metrics endpoints.
type MetricsRequest struct {
	Wait     *bool  `form:"wait"`
	Category string `form:"category" binding:"max=100"`
}

// MapLayersRequest represents the query parameters for the map layers endpoint.
type MapLayersRequest struct {
	Wait      *bool  `form:"wait"`
	Year      int    `form:"year" binding:"omitempty,gte=1900,lte=2100"`
	Offense   string `form:"offense" binding:"max=100"`
	StoreType string `form:"storeType" binding:"max=100"`
}

// DictionaryResponse is the static field dictionary.
type DictionaryResponse struct {
	Domains    map[dictionary.Domain][]dictionary.Field `json:"domains"`
	All        []dictionary.Field                       `json:"all"`
	Categories []string                                 `json:"categories"`
	StoreTypes []dictionary.StoreType                   `json:"storeTypes"`
}

// Comparison handles GET /api/v1/districts/comparison.
func (h *AnalysisHandler) Comparison(c *gin.Context) {
	var req LoadRequest
	if !bindQuery(c, &req) {
		return
	}

	bundle, err := h.service.DistrictComparison(c.Request.Context(), loadMode(req.Wait))
	if err != nil {
		h.handleError(c, err, "Failed to build district comparison")
		return
	}
	respond(c, bundle, bundle.IsLoading)
}

// FoodAccess handles GET /api/v1/food-access.
func (h *AnalysisHandler) FoodAccess(c *gin.Context) {
	var req LoadRequest
	if !bindQuery(c, &req) {
		return
	}

	bundle, err := h.service.FoodAccess(c.Request.Context(), loadMode(req.Wait))
	if err != nil {
		h.handleError(c, err, "Failed to build food access summary")
		return
	}
	respond(c, bundle, bundle.IsLoading)
}

// Incidents handles GET /api/v1/incidents.
func (h *AnalysisHandler) Incidents(c *gin.Context) {
	var req IncidentsRequest
	if !bindQuery(c, &req) {
		return
	}

	q := services.IncidentQuery{Top: req.Top, Year: req.Year}
	bundle, err := h.service.Incidents(c.Request.Context(), loadMode(req.Wait), q)
	if err != nil {
		h.handleError(c, err, "Failed to aggregate incidents")
		return
	}
	respond(c, bundle, bundle.IsLoading)
}

// Metrics handles GET /api/v1/metrics/:domain.
func (h *AnalysisHandler) Metrics(c *gin.Context) {
	domain, ok := surveyDomain(c)
	if !ok {
		return
	}
	var req MetricsRequest
	if !bindQuery(c, &req) {
		return
	}

	bundle, err := h.service.DomainMetrics(c.Request.Context(), loadMode(req.Wait), domain, req.Category)
	if err != nil {
		h.handleError(c, err, "Failed to compare metrics")
		return
	}
	respond(c, bundle, bundle.IsLoading)
}

// Export handles GET /api/v1/metrics/:domain/export. It always waits for
// the dataset since a workbook cannot be deferred.
func (h *AnalysisHandler) Export(c *gin.Context) {
	domain, ok := surveyDomain(c)
	if !ok {
		return
	}
	var req MetricsRequest
	if !bindQuery(c, &req) {
		return
	}

	bundle, err := h.service.DomainMetrics(c.Request.Context(), services.Block, domain, req.Category)
	if err != nil {
		h.handleError(c, err, "Failed to compare metrics")
		return
	}

	var buf bytes.Buffer
	sheets := []export.Sheet{{Name: SheetName(domain), Metrics: bundle.Metrics}}
	if err := export.Write(&buf, sheets, h.service.Districts()); err != nil {
		apierrors.InternalServerError(c, "Failed to build workbook", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFileName(domain)))
	c.Data(http.StatusOK, XLSXContentType, buf.Bytes())
}

// DictionaryRequest represents the query parameters for the dictionary endpoint.
type DictionaryRequest struct {
	Category string `form:"category" binding:"max=100"`
}

// Dictionary handles GET /api/v1/dictionary. No dataset is read. With
// ?category= every field list is narrowed to that category.
func (h *AnalysisHandler) Dictionary(c *gin.Context) {
	var req DictionaryRequest
	if !bindQuery(c, &req) {
		return
	}
	dict := h.service.Dictionary()
	narrow := func(fields []dictionary.Field) []dictionary.Field {
		if req.Category == "" {
			return fields
		}
		return dictionary.FieldsByCategory(fields, req.Category)
	}

	domains := make(map[dictionary.Domain][]dictionary.Field, len(dictionary.Domains))
	for _, d := range dictionary.Domains {
		fields, err := dict.Slice(d)
		if err != nil {
			apierrors.InternalServerError(c, "Failed to read field dictionary", err)
			return
		}
		domains[d] = narrow(fields)
	}

	all := dict.All()
	c.JSON(http.StatusOK, DictionaryResponse{
		Domains:    domains,
		All:        narrow(all),
		Categories: dictionary.Categories(all),
		StoreTypes: dict.StoreTypes(),
	})
}

// DictionaryMetrics handles GET /api/v1/dictionary/metrics.
func (h *AnalysisHandler) DictionaryMetrics(c *gin.Context) {
	var req LoadRequest
	if !bindQuery(c, &req) {
		return
	}

	bundle, err := h.service.DataDictionary(c.Request.Context(), loadMode(req.Wait))
	if err != nil {
		h.handleError(c, err, "Failed to build data dictionary")
		return
	}
	respond(c, bundle, bundle.IsLoading)
}

// MapLayers handles GET /api/v1/map/layers.
func (h *AnalysisHandler) MapLayers(c *gin.Context) {
	var req MapLayersRequest
	if !bindQuery(c, &req) {
		return
	}

	q := services.MapQuery{Year: req.Year, Offense: req.Offense, StoreType: req.StoreType}
	bundle, err := h.service.MapLayers(c.Request.Context(), loadMode(req.Wait), q)
	if err != nil {
		h.handleError(c, err, "Failed to build map layers")
		return
	}
	respond(c, bundle, bundle.IsLoading)
}

// FlushCache handles DELETE /api/v1/cache.
func (h *AnalysisHandler) FlushCache(c *gin.Context) {
	h.service.FlushCache()
	if log := middleware.GetLogger(c); log != nil {
		log.Info("Dataset cache flushed", nil)
	}
	c.Status(http.StatusNoContent)
}

// SheetName is the worksheet title for a domain, e.g. "Economic".
func SheetName(domain dictionary.Domain) string {
	s := strings.ReplaceAll(string(domain), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ExportFileName is the download name of a domain workbook.
func ExportFileName(domain dictionary.Domain) string {
	return fmt.Sprintf("wardlens-%s-metrics.xlsx", domain)
}

func (h *AnalysisHandler) handleError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrDatasetUnavailable):
		apierrors.ServiceUnavailable(c, "Dataset could not be loaded", datasource.FailedDataset(err), err)
	case errors.Is(err, services.ErrInvalidTop), errors.Is(err, services.ErrInvalidYear):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrUnsupportedDomain), errors.Is(err, dictionary.ErrUnknownDomain):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apierrors.ServiceUnavailable(c, "Request ended before datasets were loaded", "", err)
	default:
		apierrors.InternalServerError(c, message, err)
	}
}

// surveyDomain resolves the :domain path parameter, answering 404 for
// domains without a survey extract.
func surveyDomain(c *gin.Context) (dictionary.Domain, bool) {
	domain, err := dictionary.ParseDomain(c.Param("domain"))
	if err == nil {
		for _, d := range dictionary.SurveyDomains {
			if d == domain {
				return domain, true
			}
		}
	}
	apierrors.NotFound(c, fmt.Sprintf("Unknown survey domain %q", c.Param("domain")))
	return "", false
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return false
	}
	return true
}

func loadMode(wait *bool) services.LoadMode {
	if wait != nil && !*wait {
		return services.NonBlocking
	}
	return services.Block
}

func respond(c *gin.Context, body interface{}, loading bool) {
	status := http.StatusOK
	if loading {
		status = http.StatusAccepted
	}
	c.JSON(status, body)
}
