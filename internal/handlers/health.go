package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/wardlens/internal/database"
	"github.com/stwalsh4118/wardlens/internal/middleware"
	"github.com/stwalsh4118/wardlens/internal/models"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for data source health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PoolReporter exposes connection pool counters.
type PoolReporter interface {
	PoolStats() *database.PoolStats
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	source    Pinger
	pool      PoolReporter
	startTime time.Time
	env       string
	districts models.DistrictPair
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(source Pinger, env string, districts models.DistrictPair) *HealthHandler {
	return &HealthHandler{
		source:    source,
		startTime: time.Now(),
		env:       env,
		districts: districts,
	}
}

// WithPool makes Info report pool statistics. Used when datasets are read
// from Postgres.
func (h *HealthHandler) WithPool(pool PoolReporter) *HealthHandler {
	h.pool = pool
	return h
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status     string `json:"status"`
	DataSource string `json:"data_source"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string              `json:"version"`
	Environment string              `json:"environment"`
	Uptime      string              `json:"uptime"`
	Districts   models.DistrictPair `json:"districts"`
	Database    *database.PoolStats `json:"database,omitempty"`
}

// Health handles GET /health endpoint.
// It does not check any dependencies and is used for liveness checks.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Returns 200 OK if the data source answers, 503 Service Unavailable otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	// Create context with timeout for data source ping
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	// Check data source connectivity
	if err := h.source.Ping(ctx); err != nil {
		// Get logger from context (set by logger middleware)
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Data source health check failed", err, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
			})
		}

		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status:     "not_ready",
			DataSource: "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:     "ready",
		DataSource: "reachable",
	})
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, uptime, and the
// compared districts.
func (h *HealthHandler) Info(c *gin.Context) {
	uptime := time.Since(h.startTime)

	response := InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(uptime),
		Districts:   h.districts,
	}

	// Pool statistics only exist for the postgres data source
	if h.pool != nil {
		response.Database = h.pool.PoolStats()
	}

	c.JSON(http.StatusOK, response)
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
