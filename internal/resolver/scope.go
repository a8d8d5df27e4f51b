package resolver

import (
	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
)

// Scope tập ứng viên cho một cấp trong một lần resolve.
//   - Parent != nil: cấp trên vừa match, chỉ xét con trực tiếp của Parent.
//   - Preferred != nil: cấp trên không match nhưng một cấp cao hơn đã match;
//     ưu tiên hậu duệ của Preferred, không có thì xét toàn bộ cấp.
//   - cả hai nil: xét toàn bộ region ở cấp này.
type Scope struct {
	Level     models.Level
	Parent    *models.AdministrativeRegion
	Preferred *models.AdministrativeRegion
}

func newScope(level models.Level, parent, deepest *models.AdministrativeRegion) Scope {
	if parent != nil {
		return Scope{Level: level, Parent: parent}
	}
	return Scope{Level: level, Preferred: deepest}
}

// Unscoped báo scope có phải toàn bộ cấp không
func (s Scope) Unscoped() bool {
	return s.Parent == nil && s.Preferred == nil
}

// Contains kiểm tra region có thuộc scope không
func (s Scope) Contains(g *gazetteer.Gazetteer, region *models.AdministrativeRegion) bool {
	if region.Level != s.Level {
		return false
	}
	switch {
	case s.Parent != nil:
		return region.ParentCode == s.Parent.Code
	case s.Preferred != nil:
		return g.IsWithin(region, s.Preferred.Code)
	}
	return true
}

func (s Scope) accept(g *gazetteer.Gazetteer) func(*models.AdministrativeRegion) bool {
	if s.Unscoped() {
		return nil
	}
	return func(region *models.AdministrativeRegion) bool {
		return s.Contains(g, region)
	}
}
