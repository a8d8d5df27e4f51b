package controllers

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/app/requests"
	"github.com/cn-address-resolver/app/responses"
	"github.com/cn-address-resolver/app/services"
	"github.com/cn-address-resolver/internal/table"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressController controller xử lý các request resolve địa chỉ
type AddressController struct {
	addressService *services.AddressService
	version        string
	logger         *zap.Logger
}

// NewAddressController tạo mới AddressController
func NewAddressController(addressService *services.AddressService, version string, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		version:        version,
		logger:         logger,
	}
}

// Resolve resolve đồng bộ một địa chỉ hoặc một dãy địa chỉ
func (ac *AddressController) Resolve(c *gin.Context) {
	var req requests.ResolveAddressRequest
	ac.limitBody(c)
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Address == nil && req.Addresses == nil {
		badRequest(c, "Cần address hoặc addresses")
		return
	}

	start := time.Now()
	opts := req.Options.Apply(ac.addressService.DefaultOptions())
	resp := responses.ResolveAddressResponse{GazetteerVersion: ac.addressService.GazetteerVersion()}

	if req.Address != nil {
		record, hit, err := ac.addressService.ResolveOne(c.Request.Context(), *req.Address, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Results = []models.AddressRecord{record}
		resp.CacheHit = hit
	} else {
		records, err := ac.addressService.Transform(c.Request.Context(), req.Addresses, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Results = records
	}

	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	c.JSON(http.StatusOK, resp)
}

// SubmitJob tạo job resolve chạy nền
func (ac *AddressController) SubmitJob(c *gin.Context) {
	var req requests.BatchJobRequest
	ac.limitBody(c)
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	info, err := ac.addressService.SubmitJob(req.Addresses, req.Options.Apply(ac.addressService.DefaultOptions()))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, responses.BatchJobResponse{
		JobID:          info.JobID,
		TotalAddresses: info.Total,
		StatusURL:      fmt.Sprintf("/v1/addresses/jobs/%s/status", info.JobID),
		ResultsURL:     fmt.Sprintf("/v1/addresses/jobs/%s/results", info.JobID),
		Message:        "Job đã được tạo và đang xử lý",
	})
}

// GetJobStatus lấy trạng thái job
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	info, err := ac.addressService.GetJobStatus(c.Param("jobID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ListJobs liệt kê các job còn lưu
func (ac *AddressController) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, ac.addressService.ListJobs())
}

// GetJobResults lấy kết quả job: JSON mặc định, ?format=ndjson để stream, thêm &gzip=1 để nén
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	records, err := ac.addressService.GetJobResults(jobID)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "ndjson" {
		ac.streamNDJSON(c, records, c.Query("gzip") == "1")
		return
	}
	c.JSON(http.StatusOK, responses.JobResultsResponse{JobID: jobID, Total: len(records), Results: records})
}

// streamNDJSON ghi mỗi record một dòng JSON, tùy chọn nén gzip
func (ac *AddressController) streamNDJSON(c *gin.Context, records []models.AddressRecord, gzipEnabled bool) {
	c.Header("Content-Type", "application/x-ndjson")
	var w io.Writer = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		w = gzWriter
	}
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(w)
	for i := range records {
		if err := encoder.Encode(&records[i]); err != nil {
			ac.logger.Error("Lỗi encode NDJSON", zap.Error(err))
			return
		}
	}
}

// TransformTable nhận CSV (có header), thêm các cột resolve cho cột ?column= và trả về CSV
func (ac *AddressController) TransformTable(c *gin.Context) {
	column := c.Query("column")
	if column == "" {
		badRequest(c, "Thiếu tham số column")
		return
	}
	positionSensitive := ac.addressService.DefaultOptions().PositionSensitive
	if raw := c.Query("position_sensitive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "position_sensitive không hợp lệ: "+raw)
			return
		}
		positionSensitive = v
	}

	ac.limitBody(c)
	frame, err := table.ReadCSV(c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := ac.addressService.TransformTable(c.Request.Context(), frame, column, positionSensitive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := table.WriteCSV(c.Writer, out); err != nil {
		ac.logger.Error("Lỗi ghi CSV", zap.Error(err))
	}
}

// limitBody chặn đọc body vượt batch.max_body_bytes ngay trong lúc đọc
func (ac *AddressController) limitBody(c *gin.Context) {
	if limit := ac.addressService.MaxBodyBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
}

// HealthCheck kiểm tra sức khỏe service
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.addressService.GetStartTime())

	cacheStatus := "disabled"
	if cache := ac.addressService.Cache(); cache != nil {
		cacheStatus = "healthy"
		if _, err := cache.GetStats(c.Request.Context()); err != nil {
			cacheStatus = "degraded"
		}
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:           "healthy",
		Timestamp:        time.Now().Format(time.RFC3339),
		Uptime:           uptime.Round(time.Second).String(),
		Version:          ac.version,
		GazetteerVersion: ac.addressService.GazetteerVersion(),
		Services: map[string]string{
			"resolver": "healthy",
			"cache":    cacheStatus,
		},
	})
}
