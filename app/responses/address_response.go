package responses

import (
	"time"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/app/services"
)

// ResolveAddressResponse response resolve đồng bộ
type ResolveAddressResponse struct {
	GazetteerVersion string                 `json:"gazetteer_version"`
	Results          []models.AddressRecord `json:"results"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	CacheHit         bool                   `json:"cache_hit"`
}

// BatchJobResponse response tạo job
type BatchJobResponse struct {
	JobID          string `json:"job_id"`
	TotalAddresses int    `json:"total_addresses"`
	StatusURL      string `json:"status_url"`
	ResultsURL     string `json:"results_url"`
	Message        string `json:"message"`
}

// JobResultsResponse kết quả job dạng JSON
type JobResultsResponse struct {
	JobID   string                 `json:"job_id"`
	Total   int                    `json:"total"`
	Results []models.AddressRecord `json:"results"`
}

// RegionListResponse danh sách region
type RegionListResponse struct {
	Total   int                            `json:"total"`
	Regions []*models.AdministrativeRegion `json:"regions"`
}

// RegionSearchResponse kết quả tìm kiếm region
type RegionSearchResponse struct {
	Query   string                 `json:"query"`
	Source  string                 `json:"source"`
	Matches []services.RegionMatch `json:"matches"`
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string `json:"error"`   // Mã lỗi
	Message   string `json:"message"` // Thông báo lỗi
	Timestamp string `json:"timestamp"`
}

// NewErrorResponse tạo ErrorResponse với timestamp hiện tại
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Timestamp: time.Now().Format(time.RFC3339)}
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewSuccessResponse tạo SuccessResponse với timestamp hiện tại
func NewSuccessResponse(message string, data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Message: message, Data: data, Timestamp: time.Now().Format(time.RFC3339)}
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status           string            `json:"status"`
	Timestamp        string            `json:"timestamp"`
	Uptime           string            `json:"uptime"`
	Version          string            `json:"version"`
	GazetteerVersion string            `json:"gazetteer_version"`
	Services         map[string]string `json:"services"`
}
