package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cn-address-resolver/app/requests"
	"github.com/cn-address-resolver/app/responses"
	"github.com/cn-address-resolver/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var exportContentTypes = map[string]string{
	services.ExportJSON:   "application/json",
	services.ExportNDJSON: "application/x-ndjson",
	services.ExportCSV:    "text/csv; charset=utf-8",
}

// AdminController controller cho các thao tác quản trị
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// GetStats lấy thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// InvalidateCache invalidate cache; body {"all": true} để xóa toàn bộ
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Request không hợp lệ: "+err.Error())
		return
	}

	if err := ac.adminService.InvalidateCache(c.Request.Context(), req.All); err != nil {
		respondError(c, err)
		return
	}
	ac.logger.Info("Cache invalidated", zap.Bool("all", req.All))
	c.JSON(http.StatusOK, responses.NewSuccessResponse("Đã invalidate cache", gin.H{"all": req.All}))
}

// SeedRegions seed region của gazetteer vào MongoDB
func (ac *AdminController) SeedRegions(c *gin.Context) {
	result, err := ac.adminService.SeedRegions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewSuccessResponse("Seed gazetteer thành công", result))
}

// SyncSearchIndex đồng bộ region lên Meilisearch
func (ac *AdminController) SyncSearchIndex(c *gin.Context) {
	result, err := ac.adminService.SyncSearchIndex(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewSuccessResponse("Sync index thành công", result))
}

// ExportGazetteer export gazetteer theo format json, ndjson hoặc csv
func (ac *AdminController) ExportGazetteer(c *gin.Context) {
	format := c.Param("format")
	contentType, ok := exportContentTypes[format]
	if !ok {
		respondError(c, fmt.Errorf("%w: %q", services.ErrUnsupportedFormat, format))
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=gazetteer.%s", format))
	c.Status(http.StatusOK)
	if err := ac.adminService.ExportGazetteer(c.Writer, format); err != nil {
		ac.logger.Error("Lỗi export gazetteer", zap.String("format", format), zap.Error(err))
	}
}
