package services

import (
	"github.com/cn-address-resolver/app/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewCache tạo cache theo cấu hình. Backend "none" trả về nil.
// Khi không kết nối được Redis/MongoDB thì fallback về in-memory cache.
func NewCache(cfg config.CacheConfig, db *mongo.Database, logger *zap.Logger) ICacheService {
	memory := func(reason string, err error) ICacheService {
		if reason != "" {
			logger.Warn("Fallback về memory cache", zap.String("reason", reason), zap.Error(err))
		}
		return NewCacheService(cfg.L1Size, cfg.TTL, logger)
	}

	switch cfg.Backend {
	case config.CacheNone:
		return nil
	case config.CacheRedis:
		rc, err := NewRedisCacheService(cfg.RedisURL, cfg.TTL, logger)
		if err != nil {
			return memory("redis unavailable", err)
		}
		return rc
	case config.CacheMongo, config.CacheHybrid:
		if db == nil {
			return memory("mongodb not configured", nil)
		}
		mc, err := NewMongoCacheService(db, cfg.L1Size, logger)
		if err != nil {
			return memory("mongodb cache init failed", err)
		}
		if cfg.Backend == config.CacheMongo {
			return mc
		}
		rc, err := NewRedisCacheService(cfg.RedisURL, cfg.TTL, logger)
		if err != nil {
			logger.Warn("Redis không khả dụng, dùng MongoDB cache", zap.Error(err))
			return mc
		}
		return NewHybridCacheService(rc, mc, logger)
	default:
		return memory("", nil)
	}
}
