package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the health and API v1 routes on router.
func RegisterRoutes(router gin.IRouter, health *HealthHandler, analysis *AnalysisHandler) {
	router.GET("/health", health.Health)
	router.GET("/health/ready", health.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", health.Info)
		v1.GET("/districts/comparison", analysis.Comparison)
		v1.GET("/food-access", analysis.FoodAccess)
		v1.GET("/incidents", analysis.Incidents)

		metrics := v1.Group("/metrics")
		{
			metrics.GET("/:domain", analysis.Metrics)
			metrics.GET("/:domain/export", analysis.Export)
		}

		dictionary := v1.Group("/dictionary")
		{
			dictionary.GET("", analysis.Dictionary)
			dictionary.GET("/metrics", analysis.DictionaryMetrics)
		}

		v1.GET("/map/layers", analysis.MapLayers)
		v1.DELETE("/cache", analysis.FlushCache)
	}
}
