package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cn-address-resolver/app/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// CacheService cache in-memory có giới hạn kích thước và TTL
type CacheService struct {
	entries *expirable.LRU[string, *models.AddressCache]
	logger  *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService tạo mới in-memory cache
func NewCacheService(size int, ttl time.Duration, logger *zap.Logger) *CacheService {
	if size <= 0 {
		size = 10000
	}
	return &CacheService{
		entries: expirable.NewLRU[string, *models.AddressCache](size, nil, ttl),
		logger:  logger,
	}
}

// Get lấy kết quả từ cache
func (cs *CacheService) Get(_ context.Context, key string) (*models.AddressRecord, bool, error) {
	entry, ok := cs.entries.Get(key)
	if !ok {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)

	record := entry.Record
	return &record, true, nil
}

// Set lưu kết quả vào cache
func (cs *CacheService) Set(_ context.Context, key string, entry *models.AddressCache) error {
	cs.entries.Add(key, entry)
	return nil
}

// Delete xóa key khỏi cache
func (cs *CacheService) Delete(_ context.Context, key string) error {
	cs.entries.Remove(key)
	return nil
}

// Clear xóa toàn bộ cache và reset thống kê
func (cs *CacheService) Clear(_ context.Context) error {
	cs.entries.Purge()
	cs.hits.Store(0)
	cs.misses.Store(0)
	cs.logger.Info("Đã clear memory cache")
	return nil
}

// InvalidateByGazetteerVersion xóa entry của phiên bản gazetteer khác
func (cs *CacheService) InvalidateByGazetteerVersion(_ context.Context, gazetteerVersion string) error {
	removed := 0
	for _, key := range cs.entries.Keys() {
		entry, ok := cs.entries.Peek(key)
		if ok && !entry.IsValidGazetteerVersion(gazetteerVersion) {
			cs.entries.Remove(key)
			removed++
		}
	}
	cs.logger.Info("Đã invalidate memory cache",
		zap.String("gazetteer_version", gazetteerVersion),
		zap.Int("deleted_count", removed))
	return nil
}

// GetStats lấy thống kê cache
func (cs *CacheService) GetStats(_ context.Context) (*CacheStats, error) {
	return newCacheStats("memory", cs.hits.Load(), cs.misses.Load(), int64(cs.entries.Len())), nil
}

// Close không làm gì với in-memory cache
func (cs *CacheService) Close() error { return nil }
