package gazetteer

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/normalizer"
	"github.com/xrash/smetrics"
)

// DefaultSuggestLimit số gợi ý tối đa khi limit <= 0
const DefaultSuggestLimit = 10

// Suggestion một region gợi ý cùng điểm tương đồng [0, 1]
type Suggestion struct {
	Region *models.AdministrativeRegion `json:"region"`
	Score  float64                      `json:"score"`
}

// Suggest gợi ý region gần giống query theo tên chữ Hán hoặc phiên âm
// ("shenzhen", "深证市"). level = 0 nghĩa là mọi cấp. Chỉ phục vụ tra cứu,
// resolver không dùng tới vì resolver chỉ match chính xác.
func (g *Gazetteer) Suggest(query string, level models.Level, limit int) []Suggestion {
	query = strings.TrimSpace(normalizer.FoldString(query))
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	asciiQuery := normalizer.CompactASCII(query)

	candidates := g.regions
	if level.IsValid() {
		candidates = g.byLevel[level]
	}

	var out []Suggestion
	for _, r := range candidates {
		score := 0.0
		for _, name := range r.Names() {
			score = math.Max(score, nameScore(query, normalizer.FoldString(name)))
		}
		for _, name := range g.ascii[r.Code] {
			score = math.Max(score, smetrics.JaroWinkler(asciiQuery, name, 0.7, 4))
		}
		if score >= threshold(asciiQuery) {
			out = append(out, Suggestion{Region: r, Score: score})
		}
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Region.Code, b.Region.Code)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// nameScore điểm theo edit distance trên rune, có cộng điểm khi query là tiền tố
func nameScore(query, name string) float64 {
	if query == name {
		return 1
	}
	if strings.HasPrefix(name, query) && utf8.RuneCountInString(query) >= 2 {
		return 0.95
	}
	dist := levenshtein.ComputeDistance(query, name)
	maxLen := math.Max(float64(utf8.RuneCountInString(query)), float64(utf8.RuneCountInString(name)))
	return 1.0 - float64(dist)/maxLen
}

// Tên ngắn cần độ chính xác cao hơn
func threshold(asciiQuery string) float64 {
	if len(asciiQuery) <= 10 {
		return 0.85
	}
	return 0.75
}
