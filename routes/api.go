package routes

import (
	"github.com/cn-address-resolver/app/controllers"
	"github.com/cn-address-resolver/internal/metrics"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, ctrl Controllers) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/resolve", ctrl.Address.Resolve)
			addresses.POST("/jobs", ctrl.Address.SubmitJob)
			addresses.GET("/jobs", ctrl.Address.ListJobs)
			addresses.GET("/jobs/:jobID/status", ctrl.Address.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", ctrl.Address.GetJobResults)
		}

		v1.POST("/tables/transform", ctrl.Address.TransformTable)

		regions := v1.Group("/regions")
		{
			regions.GET("", ctrl.Region.ListRegions)
			regions.GET("/search", ctrl.Region.SearchRegions)
			regions.GET("/:code", ctrl.Region.GetRegion)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", ctrl.Admin.GetStats)
			admin.POST("/cache/invalidate", ctrl.Admin.InvalidateCache)
			admin.POST("/seed", ctrl.Admin.SeedRegions)
			admin.POST("/index/sync", ctrl.Admin.SyncSearchIndex)
			admin.GET("/export/:format", ctrl.Admin.ExportGazetteer)
		}

		v1.GET("/health", ctrl.Address.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupMetricsRoutes expose Prometheus metrics
func SetupMetricsRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
