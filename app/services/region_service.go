package services

import (
	"errors"
	"fmt"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/search"
	"go.uber.org/zap"
)

// Nguồn kết quả tìm kiếm region
const (
	SearchSourceMeilisearch = "meilisearch"
	SearchSourceLocal       = "local"
)

// ErrInvalidFilter level không nằm dưới cấp của parent
var ErrInvalidFilter = errors.New("invalid region filter")

// RegionDetail region kèm tổ tiên và số region con
type RegionDetail struct {
	Region    *models.AdministrativeRegion   `json:"region"`
	Ancestors []*models.AdministrativeRegion `json:"ancestors"`
	Children  int                            `json:"children"`
	Location  *gazetteer.Location            `json:"location,omitempty"`
}

// RegionMatch một kết quả tìm kiếm region
type RegionMatch struct {
	Region *models.AdministrativeRegion `json:"region"`
	Score  float64                      `json:"score"`
}

// RegionService tra cứu và tìm kiếm region trong gazetteer
type RegionService struct {
	gaz    *gazetteer.Gazetteer
	index  *search.RegionIndex
	logger *zap.Logger
}

// NewRegionService tạo RegionService. index nil thì chỉ dùng gợi ý local.
func NewRegionService(gaz *gazetteer.Gazetteer, index *search.RegionIndex, logger *zap.Logger) *RegionService {
	return &RegionService{gaz: gaz, index: index, logger: logger}
}

// Get tra cứu region theo adcode đầy đủ hoặc rút gọn (2/4/6/12 chữ số)
func (rs *RegionService) Get(code string) (*RegionDetail, error) {
	region, err := rs.gaz.LookupPartial(code)
	if err != nil {
		return nil, err
	}

	detail := &RegionDetail{
		Region:    region,
		Ancestors: rs.gaz.Ancestors(region.Code),
		Children:  len(rs.gaz.ChildrenOf(region.Code)),
	}
	if loc, err := rs.gaz.Locate(region.Code); err == nil {
		detail.Location = &loc
	}
	return detail, nil
}

// List liệt kê region theo level và/hoặc parent. Không có điều kiện nào thì trả về các province.
func (rs *RegionService) List(level models.Level, parentCode string) ([]*models.AdministrativeRegion, error) {
	if parentCode == "" {
		if level == 0 {
			return rs.gaz.ChildrenOf(""), nil
		}
		return rs.gaz.CandidatesAtLevel(level), nil
	}

	parent, err := rs.gaz.LookupPartial(parentCode)
	if err != nil {
		return nil, err
	}
	if level == 0 {
		return rs.gaz.ChildrenOf(parent.Code), nil
	}
	if level <= parent.Level {
		return nil, fmt.Errorf("%w: level %s is not below parent %s", ErrInvalidFilter, level, parent.Level)
	}

	var out []*models.AdministrativeRegion
	for _, r := range rs.gaz.CandidatesAtLevel(level) {
		if rs.gaz.IsWithin(r, parent.Code) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Search tìm region theo tên, alias hoặc phiên âm. Dùng Meilisearch nếu có,
// lỗi Meilisearch thì fallback về gợi ý local.
func (rs *RegionService) Search(query string, level models.Level, limit int) ([]RegionMatch, string, error) {
	if query == "" {
		return nil, "", search.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = gazetteer.DefaultSuggestLimit
	}

	if rs.index != nil {
		hits, err := rs.index.Search(query, level, "", limit)
		if err == nil {
			return rs.fromHits(hits), SearchSourceMeilisearch, nil
		}
		rs.logger.Warn("Meilisearch lỗi, dùng gợi ý local", zap.Error(err))
	}

	suggestions := rs.gaz.Suggest(query, level, limit)
	out := make([]RegionMatch, len(suggestions))
	for i, s := range suggestions {
		out[i] = RegionMatch{Region: s.Region, Score: s.Score}
	}
	return out, SearchSourceLocal, nil
}

// fromHits map hit về region của gazetteer hiện tại; bỏ hit không còn trong gazetteer
func (rs *RegionService) fromHits(hits []search.Hit) []RegionMatch {
	out := make([]RegionMatch, 0, len(hits))
	for _, h := range hits {
		region, err := rs.gaz.LookupByCode(h.Code)
		if err != nil {
			continue
		}
		out = append(out, RegionMatch{Region: region, Score: h.Score})
	}
	return out
}
