package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Chinese Address Resolver",
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"api": "Address Resolver API v1",
				"endpoints": map[string]string{
					"resolve":         "POST /v1/addresses/resolve",
					"jobs":            "POST /v1/addresses/jobs",
					"job_status":      "GET /v1/addresses/jobs/:jobID/status",
					"job_results":     "GET /v1/addresses/jobs/:jobID/results?format=ndjson&gzip=1",
					"table_transform": "POST /v1/tables/transform?column=&position_sensitive=",
					"region":          "GET /v1/regions/:code",
					"regions":         "GET /v1/regions?level=&parent=",
					"region_search":   "GET /v1/regions/search?q=&level=&limit=",
					"admin_stats":     "GET /v1/admin/stats",
					"export":          "GET /v1/admin/export/:format",
					"health":          "GET /health",
					"metrics":         "GET /metrics",
				},
			})
		})
	}
}
