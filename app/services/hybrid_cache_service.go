package services

import (
	"context"
	"errors"
	"time"

	"github.com/cn-address-resolver/app/models"
	"go.uber.org/zap"
)

// HybridCacheService cache service kết hợp Redis (L1) + MongoDB (L2)
type HybridCacheService struct {
	redisCache *RedisCacheService
	mongoCache *MongoCacheService
	logger     *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redisCache: redisCache,
		mongoCache: mongoCache,
		logger:     logger,
	}
}

// Get lấy kết quả từ cache (Redis trước, MongoDB sau)
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.AddressRecord, bool, error) {
	record, found, err := hcs.redisCache.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi Redis cache, fallback MongoDB", zap.Error(err))
	} else if found {
		return record, true, nil
	}

	record, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Đồng bộ MongoDB -> Redis
	entry := models.AddressCache{RawFingerprint: key, RawAddress: record.Raw, Record: *record}
	if cached, ok := hcs.mongoCache.l1Cache.Peek(key); ok {
		entry = *cached
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.redisCache.Set(bgCtx, key, &entry); err != nil {
			hcs.logger.Warn("Lỗi sync MongoDB->Redis", zap.Error(err), zap.String("key", key))
		}
	}()

	return record, true, nil
}

// Set lưu kết quả vào cả Redis và MongoDB
func (hcs *HybridCacheService) Set(ctx context.Context, key string, entry *models.AddressCache) error {
	return hcs.both(
		func() error { return hcs.redisCache.Set(ctx, key, entry) },
		func() error { return hcs.mongoCache.Set(ctx, key, entry) },
	)
}

// Delete xóa key khỏi cả Redis và MongoDB
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return hcs.both(
		func() error { return hcs.redisCache.Delete(ctx, key) },
		func() error { return hcs.mongoCache.Delete(ctx, key) },
	)
}

// Clear xóa toàn bộ cache (cả Redis và MongoDB)
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	return hcs.both(
		func() error { return hcs.redisCache.Clear(ctx) },
		func() error { return hcs.mongoCache.Clear(ctx) },
	)
}

// InvalidateByGazetteerVersion invalidate cả hai tầng
func (hcs *HybridCacheService) InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error {
	return hcs.both(
		func() error { return hcs.redisCache.InvalidateByGazetteerVersion(ctx, gazetteerVersion) },
		func() error { return hcs.mongoCache.InvalidateByGazetteerVersion(ctx, gazetteerVersion) },
	)
}

// GetStats gộp thống kê: hit của cả hai tầng, số item lấy theo MongoDB
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, err := hcs.redisCache.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	mongoStats, err := hcs.mongoCache.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	hits := redisStats.TotalHits + mongoStats.TotalHits
	return newCacheStats("hybrid", hits, mongoStats.TotalMiss, mongoStats.TotalItems), nil
}

// Close đóng kết nối Redis; MongoDB do caller quản lý
func (hcs *HybridCacheService) Close() error {
	return errors.Join(hcs.redisCache.Close(), hcs.mongoCache.Close())
}

// WarmUp nạp L1 của tầng MongoDB
func (hcs *HybridCacheService) WarmUp(ctx context.Context, gazetteerVersion string, limit int) error {
	return hcs.mongoCache.WarmUp(ctx, gazetteerVersion, limit)
}

// both chạy song song thao tác trên hai tầng và gộp lỗi
func (hcs *HybridCacheService) both(l1, l2 func() error) error {
	errCh := make(chan error, 2)
	go func() { errCh <- l1() }()
	go func() { errCh <- l2() }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			hcs.logger.Warn("Lỗi thao tác hybrid cache", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
