package resolver

import (
	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/matcher"
)

type regionMatch = matcher.Match[*models.AdministrativeRegion]

// streetSuffixes hậu tố cho biết chữ phía trước là tên đường
var streetSuffixes = []string{"大道", "大街", "胡同", "路", "街", "道", "巷", "弄"}

// streetDirections hướng có thể chen giữa tên đường và hậu tố (中山北路)
var streetDirections = []string{"", "东", "西", "南", "北", "中"}

// aliasGuard quyết định alias nào được coi là tên hành chính đứng riêng.
// Các tên ở cấp hiện tại và cấp dưới chỉ được quét một lần, khi gặp alias đầu tiên.
type aliasGuard struct {
	r       *Resolver
	text    matcher.Text
	level   models.Level
	names   []regionMatch
	scanned bool
}

func (r *Resolver) newAliasGuard(text matcher.Text, level models.Level) *aliasGuard {
	return &aliasGuard{r: r, text: text, level: level}
}

// standalone báo alias m có thật sự đứng như một tên hành chính không.
// Alias bị loại khi:
//   - nằm trong một tên dài hơn cùng cấp hoặc cấp dưới (吉林 trong 吉林市,
//     大连 trong 五大连池市, 内蒙 trong 内蒙古)
//   - ngay sau alias là hậu tố đường (湖南路, 海南路, 中山北路)
func (g *aliasGuard) standalone(m regionMatch) bool {
	for _, name := range g.covering() {
		if name.Start <= m.Start && name.End >= m.End && name.Len() > m.Len() {
			return false
		}
	}
	if !streetFollows(g.text, m.End) {
		return true
	}
	// 湖南道县: 道 mở đầu tên huyện chứ không phải hậu tố đường
	for _, level := range levelsBelow(g.level) {
		if g.r.automata[level].LongestAt(g.text, m.End, nil) > 0 {
			return true
		}
	}
	return false
}

// covering mọi match (tên chuẩn lẫn alias) từ cấp hiện tại trở xuống
func (g *aliasGuard) covering() []regionMatch {
	if g.scanned {
		return g.names
	}
	g.scanned = true
	for _, level := range append([]models.Level{g.level}, levelsBelow(g.level)...) {
		g.names = append(g.names, g.r.automata[level].FindAll(g.text)...)
	}
	return g.names
}

func streetFollows(text matcher.Text, pos int) bool {
	for _, dir := range streetDirections {
		for _, suffix := range streetSuffixes {
			if text.HasPrefixAt(pos, dir+suffix) {
				return true
			}
		}
	}
	return false
}

func levelsBelow(level models.Level) []models.Level {
	var below []models.Level
	for _, l := range models.Levels {
		if l > level {
			below = append(below, l)
		}
	}
	return below
}
