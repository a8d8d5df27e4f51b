package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/cn-address-resolver/app/models"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const (
	syncBatchSize    = 1000
	taskPollInterval = 500 * time.Millisecond
)

// ErrEmptyQuery query tìm kiếm rỗng
var ErrEmptyQuery = errors.New("search query is empty")

// Config cấu hình kết nối Meilisearch
type Config struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// Document bản ghi region trong index
type Document struct {
	ID               string   `json:"id"`
	Code             string   `json:"code"`
	Level            int      `json:"level"`
	Name             string   `json:"name"`
	ASCIIName        string   `json:"ascii_name"`
	Aliases          []string `json:"aliases"`
	ParentCode       string   `json:"parent_code"`
	Path             []string `json:"path"`
	GazetteerVersion string   `json:"gazetteer_version"`
}

// NewDocument tạo document từ region và đường dẫn tên tổ tiên (top-down, gồm cả region)
func NewDocument(r *models.AdministrativeRegion, path []string) Document {
	aliases := r.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	return Document{
		ID:               r.Code,
		Code:             r.Code,
		Level:            int(r.Level),
		Name:             r.Name,
		ASCIIName:        r.ASCIIName,
		Aliases:          aliases,
		ParentCode:       r.ParentCode,
		Path:             path,
		GazetteerVersion: r.GazetteerVersion,
	}
}

// Hit một kết quả tìm kiếm
type Hit struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Level int     `json:"level"`
	Score float64 `json:"score"`
}

// RegionIndex index Meilisearch chứa các region của gazetteer
type RegionIndex struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// NewRegionIndex tạo client và kiểm tra kết nối
func NewRegionIndex(cfg Config, logger *zap.Logger) (*RegionIndex, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RegionIndex{
		client:    client,
		logger:    logger,
		indexName: cfg.IndexName,
		timeout:   timeout,
	}, nil
}

// Name tên index
func (ri *RegionIndex) Name() string { return ri.indexName }

// Configure cấu hình searchable/filterable attributes và chờ task hoàn tất
func (ri *RegionIndex) Configure() error {
	index := ri.client.Index(ri.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "aliases", "ascii_name"},
		FilterableAttributes: []string{"code", "level", "parent_code", "gazetteer_version"},
		SortableAttributes:   []string{"level", "code"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  3,
				TwoTypos: 7,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index: %w", err)
	}
	if err := ri.wait(task.TaskUID); err != nil {
		return fmt.Errorf("lỗi cấu hình index: %w", err)
	}

	ri.logger.Info("Đã cấu hình index Meilisearch", zap.String("index", ri.indexName), zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Sync thêm/cập nhật documents theo batch và xóa documents của phiên bản khác
func (ri *RegionIndex) Sync(docs []Document, version string) (int, error) {
	if len(docs) == 0 {
		return 0, errors.New("không có dữ liệu để sync")
	}
	index := ri.client.Index(ri.indexName)

	for i := 0; i < len(docs); i += syncBatchSize {
		end := min(i+syncBatchSize, len(docs))
		task, err := index.AddDocuments(docs[i:end], "id")
		if err != nil {
			return i, fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}
		if err := ri.wait(task.TaskUID); err != nil {
			return i, fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}
		ri.logger.Debug("Đã thêm batch documents", zap.Int("from", i), zap.Int("to", end))
	}

	task, err := index.DeleteDocumentsByFilter("NOT " + FilterVersion(version))
	if err != nil {
		ri.logger.Warn("Không thể xóa documents phiên bản cũ", zap.Error(err))
	} else if err := ri.wait(task.TaskUID); err != nil {
		ri.logger.Warn("Không thể xóa documents phiên bản cũ", zap.Error(err))
	}

	ri.logger.Info("Đã sync gazetteer lên Meilisearch",
		zap.String("index", ri.indexName),
		zap.String("gazetteer_version", version),
		zap.Int("total_documents", len(docs)))
	return len(docs), nil
}

// Search tìm region theo tên/alias/phiên âm; level 0 là mọi cấp
func (ri *RegionIndex) Search(query string, level models.Level, parentCode string, limit int) ([]Hit, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	req := &meilisearch.SearchRequest{
		Limit:            int64(limit),
		Filter:           FilterLevelParent(level, parentCode),
		ShowRankingScore: true,
	}
	if req.Filter == "" {
		req.Filter = nil
	}

	result, err := ri.client.Index(ri.indexName).Search(query, req)
	if err != nil {
		return nil, fmt.Errorf("lỗi tìm kiếm Meilisearch: %w", err)
	}
	return parseHits(result.Hits), nil
}

// parseHits chuyển hits của Meilisearch thành Hit
func parseHits(hits []interface{}) []Hit {
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		m, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		code, _ := m["code"].(string)
		if code == "" {
			continue
		}
		hit := Hit{Code: code}
		hit.Name, _ = m["name"].(string)
		if level, ok := m["level"].(float64); ok {
			hit.Level = int(level)
		}
		if score, ok := m["_rankingScore"].(float64); ok {
			hit.Score = score
		}
		out = append(out, hit)
	}
	return out
}

func (ri *RegionIndex) wait(taskUID int64) error {
	deadline := time.Now().Add(ri.timeout)
	for {
		task, err := ri.client.GetTask(taskUID)
		if err != nil {
			return err
		}
		switch task.Status {
		case meilisearch.TaskStatusSucceeded:
			return nil
		case meilisearch.TaskStatusFailed, meilisearch.TaskStatusCanceled:
			return fmt.Errorf("task %d %s: %s", taskUID, task.Status, task.Error.Message)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("task %d timed out after %s", taskUID, ri.timeout)
		}
		time.Sleep(taskPollInterval)
	}
}
