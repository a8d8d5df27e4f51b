package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cn-address-resolver/app/config"
	"github.com/cn-address-resolver/app/controllers"
	"github.com/cn-address-resolver/app/services"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/metrics"
	"github.com/cn-address-resolver/internal/resolver"
	"github.com/cn-address-resolver/internal/search"
	"github.com/cn-address-resolver/routes"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// warmer cache có tầng persistent nạp trước được
type warmer interface {
	WarmUp(ctx context.Context, gazetteerVersion string, limit int) error
}

func main() {
	// 1. Load configuration
	cfg, err := config.Load(os.Getenv("RESOLVER_CONFIG"))
	if err != nil {
		panic(err)
	}

	// 2. Khởi tạo logger
	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Address Resolver Service", zap.String("env", cfg.App.Env))

	// 3. Nạp gazetteer, lỗi ở bước này là fatal
	gaz := loadGazetteer(cfg, logger)

	// 4. Kết nối MongoDB (tùy chọn)
	db := initMongoDB(cfg.Cache, logger)
	if db != nil {
		defer func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}()
	}

	// 5. Cache kết quả resolve
	cache := services.NewCache(cfg.Cache, db, logger)
	if cache != nil {
		defer cache.Close()
		if wc, ok := cache.(warmer); ok {
			if err := wc.WarmUp(context.Background(), gaz.Version(), cfg.Cache.L1Size/2); err != nil {
				logger.Warn("Failed to warm up cache", zap.Error(err))
			}
		}
	}

	// 6. Meilisearch (tùy chọn)
	index := initSearchIndex(cfg.Meilisearch, logger)

	// 7. Khởi tạo services
	exec := resolver.NewExecutor(
		resolver.New(gaz, resolver.Options{
			PositionSensitive: cfg.Resolver.PositionSensitive,
			FillParents:       cfg.Resolver.FillParents,
		}),
		cfg.Resolver.Workers,
		cfg.Resolver.ChunkSize,
	)
	addressService := services.NewAddressService(exec, cache, cfg.Batch, logger)
	regionService := services.NewRegionService(gaz, index, logger)
	adminService := services.NewAdminService(gaz, addressService, db, index, logger)

	// 8. Khởi tạo router và routes
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Controllers{
		Address: controllers.NewAddressController(addressService, cfg.App.Version, logger),
		Region:  controllers.NewRegionController(regionService),
		Admin:   controllers.NewAdminController(adminService, logger),
	}, logger)

	// 9. Khởi động server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	addressService.Wait()

	logger.Info("Server exited")
}

// loadGazetteer nạp dataset từ gazetteer.path hoặc dataset nhúng
func loadGazetteer(cfg *config.Config, logger *zap.Logger) *gazetteer.Gazetteer {
	opts := []gazetteer.Option{
		gazetteer.WithLogger(logger),
		gazetteer.WithDerivedShortNames(cfg.Gazetteer.DeriveShortNames),
	}

	var (
		gaz *gazetteer.Gazetteer
		err error
	)
	if cfg.Gazetteer.Path != "" {
		gaz, err = gazetteer.LoadFile(cfg.Gazetteer.Path, opts...)
	} else {
		gaz, err = gazetteer.Default(opts...)
	}
	if err != nil {
		logger.Fatal("Failed to load gazetteer", zap.String("path", cfg.Gazetteer.Path), zap.Error(err))
	}

	for level, n := range gaz.Counts() {
		metrics.GazetteerRegions.WithLabelValues(level.String()).Set(float64(n))
	}
	logger.Info("Gazetteer loaded",
		zap.String("version", gaz.Version()),
		zap.Int("regions", gaz.Len()),
	)
	return gaz
}

// initMongoDB kết nối MongoDB khi cache.mongo_url được cấu hình
func initMongoDB(cfg config.CacheConfig, logger *zap.Logger) *mongo.Database {
	if cfg.MongoURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		logger.Warn("Failed to connect to MongoDB", zap.Error(err))
		return nil
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Warn("Failed to ping MongoDB", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return nil
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return client.Database(cfg.MongoDatabase)
}

// initSearchIndex kết nối Meilisearch khi meilisearch.enabled
func initSearchIndex(cfg config.MeilisearchConfig, logger *zap.Logger) *search.RegionIndex {
	if !cfg.Enabled {
		return nil
	}
	index, err := search.NewRegionIndex(search.Config{
		Host:      cfg.URL,
		APIKey:    cfg.APIKey,
		IndexName: cfg.Index,
		Timeout:   cfg.Timeout,
	}, logger)
	if err != nil {
		logger.Warn("Meilisearch không khả dụng, dùng tìm kiếm local", zap.Error(err))
		return nil
	}
	if err := index.Configure(); err != nil {
		logger.Warn("Failed to configure Meilisearch index", zap.Error(err))
	}
	return index
}
