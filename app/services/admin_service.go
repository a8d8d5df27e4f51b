package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/search"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// RegionCollection collection MongoDB chứa region đã seed
const RegionCollection = "admin_regions"

// Export formats
const (
	ExportJSON   = "json"
	ExportNDJSON = "ndjson"
	ExportCSV    = "csv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrMongoDisabled     = errors.New("mongodb is not configured")
	ErrSearchDisabled    = errors.New("meilisearch is not enabled")
)

// AdminService thống kê, seed MongoDB, sync Meilisearch và export gazetteer
type AdminService struct {
	gaz            *gazetteer.Gazetteer
	addressService *AddressService
	db             *mongo.Database
	index          *search.RegionIndex
	logger         *zap.Logger
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	GazetteerVersion string                 `json:"gazetteer_version"`
	Regions          map[string]int         `json:"regions"`
	Cache            *CacheStats            `json:"cache,omitempty"`
	Jobs             map[JobStatus]int      `json:"jobs"`
	Uptime           string                 `json:"uptime"`
	UptimeSeconds    int64                  `json:"uptime_seconds"`
	NumGoroutine     int                    `json:"num_goroutine"`
	MemoryUsage      map[string]interface{} `json:"memory_usage"`
	DatabaseStats    *DatabaseStats         `json:"database_stats,omitempty"`
	SearchIndex      string                 `json:"search_index,omitempty"`
}

// DatabaseStats thống kê MongoDB
type DatabaseStats struct {
	AdminRegions int64 `json:"admin_regions"`
	AddressCache int64 `json:"address_cache"`
}

// SeedResult kết quả seed region vào MongoDB
type SeedResult struct {
	GazetteerVersion string `json:"gazetteer_version"`
	Upserted         int64  `json:"upserted"`
	Matched          int64  `json:"matched"`
	Deleted          int64  `json:"deleted"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// SyncResult kết quả sync region lên Meilisearch
type SyncResult struct {
	Index            string `json:"index"`
	GazetteerVersion string `json:"gazetteer_version"`
	Documents        int    `json:"documents"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// NewAdminService tạo AdminService. db và index có thể nil.
func NewAdminService(gaz *gazetteer.Gazetteer, addressService *AddressService, db *mongo.Database, index *search.RegionIndex, logger *zap.Logger) *AdminService {
	return &AdminService{
		gaz:            gaz,
		addressService: addressService,
		db:             db,
		index:          index,
		logger:         logger,
	}
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(as.addressService.GetStartTime())
	stats := &SystemStats{
		GazetteerVersion: as.gaz.Version(),
		Regions:          make(map[string]int, len(models.Levels)),
		Jobs:             as.addressService.JobCounts(),
		Uptime:           uptime.Round(time.Second).String(),
		UptimeSeconds:    int64(uptime.Seconds()),
		NumGoroutine:     runtime.NumGoroutine(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
	}
	for level, n := range as.gaz.Counts() {
		stats.Regions[level.String()] = n
	}

	if cache := as.addressService.Cache(); cache != nil {
		cs, err := cache.GetStats(ctx)
		if err != nil {
			as.logger.Warn("Không thể lấy cache stats", zap.Error(err))
		} else {
			stats.Cache = cs
		}
	}
	if as.db != nil {
		dbStats, err := as.getDatabaseStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("lỗi lấy database stats: %w", err)
		}
		stats.DatabaseStats = dbStats
	}
	if as.index != nil {
		stats.SearchIndex = as.index.Name()
	}
	return stats, nil
}

func (as *AdminService) getDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	count, err := as.db.Collection(RegionCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.AdminRegions = count

	count, err = as.db.Collection(CacheCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.AddressCache = count
	return stats, nil
}

// InvalidateCache xóa cache của phiên bản gazetteer cũ, hoặc toàn bộ nếu all
func (as *AdminService) InvalidateCache(ctx context.Context, all bool) error {
	cache := as.addressService.Cache()
	if cache == nil {
		return nil
	}
	if all {
		return cache.Clear(ctx)
	}
	return cache.InvalidateByGazetteerVersion(ctx, as.gaz.Version())
}

// SeedRegions upsert toàn bộ region của gazetteer vào MongoDB và xóa region của phiên bản khác
func (as *AdminService) SeedRegions(ctx context.Context) (*SeedResult, error) {
	if as.db == nil {
		return nil, ErrMongoDisabled
	}
	start := time.Now()
	collection := as.db.Collection(RegionCollection)

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "level", Value: 1}, {Key: "parent_code", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		as.logger.Warn("Không thể tạo indexes cho admin_regions", zap.Error(err))
	}

	regions := as.gaz.Regions()
	writes := make([]mongo.WriteModel, len(regions))
	for i, r := range regions {
		writes[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"code": r.Code}).
			SetReplacement(r).
			SetUpsert(true)
	}
	written, err := collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("lỗi seed admin_regions: %w", err)
	}

	version := as.gaz.Version()
	deleted, err := collection.DeleteMany(ctx, bson.M{"gazetteer_version": bson.M{"$ne": version}})
	if err != nil {
		return nil, fmt.Errorf("lỗi xóa region phiên bản cũ: %w", err)
	}

	result := &SeedResult{
		GazetteerVersion: version,
		Upserted:         written.UpsertedCount,
		Matched:          written.MatchedCount,
		Deleted:          deleted.DeletedCount,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	as.logger.Info("Gazetteer seed completed",
		zap.String("gazetteer_version", version),
		zap.Int("regions", len(regions)),
		zap.Int64("upserted", result.Upserted),
		zap.Int64("deleted", result.Deleted))
	return result, nil
}

// SyncSearchIndex đẩy toàn bộ region lên Meilisearch
func (as *AdminService) SyncSearchIndex(ctx context.Context) (*SyncResult, error) {
	if as.index == nil {
		return nil, ErrSearchDisabled
	}
	start := time.Now()

	if err := as.index.Configure(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	regions := as.gaz.Regions()
	docs := make([]search.Document, len(regions))
	for i, r := range regions {
		docs[i] = search.NewDocument(r, as.path(r))
	}

	version := as.gaz.Version()
	n, err := as.index.Sync(docs, version)
	if err != nil {
		return nil, err
	}
	return &SyncResult{
		Index:            as.index.Name(),
		GazetteerVersion: version,
		Documents:        n,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// path tên các tổ tiên và chính region, top-down
func (as *AdminService) path(r *models.AdministrativeRegion) []string {
	ancestors := as.gaz.Ancestors(r.Code)
	names := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		names = append(names, a.Name)
	}
	return append(names, r.Name)
}

// ExportGazetteer ghi toàn bộ region theo format json, ndjson hoặc csv
func (as *AdminService) ExportGazetteer(w io.Writer, format string) error {
	regions := as.gaz.Regions()

	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(regions)
	case ExportNDJSON:
		enc := json.NewEncoder(w)
		for _, r := range regions {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case ExportCSV:
		writer := csv.NewWriter(w)
		if err := writer.Write([]string{"code", "level", "name", "parent_code", "ascii_name", "aliases", "latitude", "longitude"}); err != nil {
			return err
		}
		for _, r := range regions {
			record := []string{
				r.Code,
				r.Level.String(),
				r.Name,
				r.ParentCode,
				r.ASCIIName,
				strings.Join(r.Aliases, "|"),
				formatCoordinate(r.Latitude),
				formatCoordinate(r.Longitude),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
