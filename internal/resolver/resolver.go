package resolver

import (
	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/matcher"
)

// NoAdcode giá trị Adcode khi không match được cấp nào
const NoAdcode = ""

// Options tùy chọn resolve
type Options struct {
	// PositionSensitive ghi lại span [start, end) (theo rune) của từng tên đã match
	PositionSensitive bool `json:"position_sensitive" mapstructure:"position_sensitive"`
	// FillParents điền các cấp trên còn thiếu từ tổ tiên của cấp sâu nhất (không có span)
	FillParents bool `json:"fill_parents" mapstructure:"fill_parents"`
}

type regionAutomaton = matcher.Automaton[*models.AdministrativeRegion]

// Resolver resolve chuỗi địa chỉ thành 省/市/区 theo thứ tự top-down.
// Automaton từng cấp được dựng một lần trong New; Resolver không có state
// thay đổi nên một instance dùng chung cho mọi goroutine.
type Resolver struct {
	gaz      *gazetteer.Gazetteer
	automata map[models.Level]*regionAutomaton
	opts     Options
}

// New dựng Resolver trên gazetteer
func New(g *gazetteer.Gazetteer, opts Options) *Resolver {
	automata := make(map[models.Level]*regionAutomaton, len(models.Levels))
	for _, level := range models.Levels {
		var patterns []matcher.Pattern[*models.AdministrativeRegion]
		for _, region := range g.CandidatesAtLevel(level) {
			patterns = append(patterns, matcher.Pattern[*models.AdministrativeRegion]{Text: region.Name, Value: region})
			for _, alias := range region.Aliases {
				patterns = append(patterns, matcher.Pattern[*models.AdministrativeRegion]{Text: alias, Value: region, Alias: true})
			}
		}
		automata[level] = matcher.Compile(patterns)
	}
	return &Resolver{gaz: g, automata: automata, opts: opts}
}

// WithOptions trả về Resolver dùng chung automaton nhưng khác Options
func (r *Resolver) WithOptions(opts Options) *Resolver {
	if opts == r.opts {
		return r
	}
	return &Resolver{gaz: r.gaz, automata: r.automata, opts: opts}
}

// Options tùy chọn hiện tại
func (r *Resolver) Options() Options { return r.opts }

// Gazetteer gazetteer mà resolver dùng
func (r *Resolver) Gazetteer() *gazetteer.Gazetteer { return r.gaz }

// Resolve resolve một chuỗi địa chỉ. Không bao giờ lỗi: chuỗi không chứa tên
// hành chính nào cho ra record rỗng với Adcode = NoAdcode.
func (r *Resolver) Resolve(raw string) models.AddressRecord {
	record := models.AddressRecord{Raw: raw, Adcode: NoAdcode}
	text := matcher.NewText(raw)

	var parent, deepest *models.AdministrativeRegion
	for _, level := range models.Levels {
		scope := newScope(level, parent, deepest)
		m, ok := r.match(text, scope)
		if !ok {
			parent = nil
			continue
		}

		var span *models.Span
		if r.opts.PositionSensitive {
			span = &models.Span{Start: m.Start, End: m.End}
		}
		record.Set(m.Value, span)
		text = text.Cut(m.Start, m.End)
		parent, deepest = m.Value, m.Value
	}

	record.ResidualAddress = text.Residual()
	if deepest != nil {
		record.Adcode = deepest.Code
		if r.opts.FillParents {
			r.fillParents(&record, deepest)
		}
	}
	return record
}

func (r *Resolver) match(text matcher.Text, scope Scope) (regionMatch, bool) {
	automaton := r.automata[scope.Level]
	if scope.Preferred != nil {
		if m, ok := automaton.Best(text, r.accept(text, scope), lowerCode); ok {
			return m, true
		}
		scope = Scope{Level: scope.Level}
	}
	return automaton.Best(text, r.accept(text, scope), lowerCode)
}

// accept lọc match theo scope, alias phải đứng riêng như một tên hành chính
func (r *Resolver) accept(text matcher.Text, scope Scope) func(regionMatch) bool {
	inScope := scope.accept(r.gaz)
	guard := r.newAliasGuard(text, scope.Level)
	return func(m regionMatch) bool {
		if inScope != nil && !inScope(m.Value) {
			return false
		}
		return !m.Alias || guard.standalone(m)
	}
}

// fillParents điền các cấp trên chưa match từ chuỗi tổ tiên của deepest
func (r *Resolver) fillParents(record *models.AddressRecord, deepest *models.AdministrativeRegion) {
	for _, ancestor := range r.gaz.Ancestors(deepest.Code) {
		if record.Name(ancestor.Level) == "" {
			record.Set(ancestor, nil)
		}
	}
}

func lowerCode(x, y *models.AdministrativeRegion) bool {
	return x.Code < y.Code
}
