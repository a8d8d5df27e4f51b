// Package routes khai báo toàn bộ routing của service.
//
// Cấu trúc:
// - api.go: API routes (/v1/*), health và metrics
// - web.go: Web routes (/, /docs)
// - routes.go: SetupAllRoutes và middleware
package routes

import (
	"net/http"
	"time"

	"github.com/cn-address-resolver/app/controllers"
	"github.com/cn-address-resolver/app/responses"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers gom các controller được mount vào router
type Controllers struct {
	Address *controllers.AddressController
	Region  *controllers.RegionController
	Admin   *controllers.AdminController
}

// SetupAllRoutes thiết lập middleware và tất cả routes
func SetupAllRoutes(router *gin.Engine, ctrl Controllers, logger *zap.Logger) {
	setupMiddleware(router, logger)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, ctrl.Address)
	SetupAPIRoutes(router, ctrl)
	SetupMetricsRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("ROUTE_NOT_FOUND", c.Request.Method+" "+c.Request.URL.Path))
	})
}

func setupMiddleware(router *gin.Engine, logger *zap.Logger) {
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
}

// requestLogger log mỗi request bằng zap
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP request", fields...)
			return
		}
		logger.Info("HTTP request", fields...)
	}
}
