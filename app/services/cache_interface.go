package services

import (
	"context"

	"github.com/cn-address-resolver/app/models"
)

// CacheStats thống kê cache
type CacheStats struct {
	Backend    string  `json:"backend"`
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

func newCacheStats(backend string, hits, misses, items int64) *CacheStats {
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return &CacheStats{
		Backend:    backend,
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: items,
	}
}

// ICacheService cache kết quả resolve. Key là fingerprint do utils.Fingerprint sinh ra.
type ICacheService interface {
	// Get lấy kết quả từ cache
	Get(ctx context.Context, key string) (*models.AddressRecord, bool, error)

	// Set lưu kết quả vào cache
	Set(ctx context.Context, key string, entry *models.AddressCache) error

	Delete(ctx context.Context, key string) error

	// Clear xóa tất cả cache
	Clear(ctx context.Context) error

	// InvalidateByGazetteerVersion xóa các entry không thuộc phiên bản gazetteer hiện tại
	InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error

	GetStats(ctx context.Context) (*CacheStats, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}
