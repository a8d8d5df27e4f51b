package matcher

import (
	"github.com/cn-address-resolver/internal/normalizer"
)

// Pattern một chuỗi cần tìm cùng giá trị gắn kèm (thường là region)
type Pattern[T any] struct {
	Text  string
	Value T
	Alias bool // false với tên chuẩn
}

// Match một lần xuất hiện của Pattern, [Start, End) tính theo rune trên chuỗi gốc
type Match[T any] struct {
	Pattern[T]
	Start int
	End   int
}

// Len độ dài match tính theo rune
func (m Match[T]) Len() int { return m.End - m.Start }

type node struct {
	next map[rune]int32
	fail int32
	dict int32   // nút gần nhất trên chuỗi fail có output, -1 nếu không có
	out  []int32 // index pattern kết thúc tại nút này
}

type entry[T any] struct {
	Pattern[T]
	length int
}

// Automaton máy Aho-Corasick trên rune đã fold.
// Sau Compile không còn thay đổi nên dùng chung giữa nhiều goroutine được.
type Automaton[T any] struct {
	nodes    []node
	patterns []entry[T]
}

// Compile dựng automaton từ danh sách pattern. Pattern rỗng bị bỏ qua.
func Compile[T any](patterns []Pattern[T]) *Automaton[T] {
	a := &Automaton[T]{nodes: []node{{dict: -1}}}

	for _, p := range patterns {
		runes := normalizer.FoldRunes(p.Text)
		if len(runes) == 0 {
			continue
		}
		cur := int32(0)
		for _, r := range runes {
			nxt, ok := a.nodes[cur].next[r]
			if !ok {
				if a.nodes[cur].next == nil {
					a.nodes[cur].next = make(map[rune]int32)
				}
				a.nodes = append(a.nodes, node{dict: -1})
				nxt = int32(len(a.nodes) - 1)
				a.nodes[cur].next[r] = nxt
			}
			cur = nxt
		}
		a.nodes[cur].out = append(a.nodes[cur].out, int32(len(a.patterns)))
		a.patterns = append(a.patterns, entry[T]{Pattern: p, length: len(runes)})
	}

	a.link()
	return a
}

// link tính fail link và dictionary link theo BFS
func (a *Automaton[T]) link() {
	queue := make([]int32, 0, len(a.nodes))
	for _, child := range a.nodes[0].next {
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for r, v := range a.nodes[u].next {
			f := a.nodes[u].fail
			for f != 0 {
				if _, ok := a.nodes[f].next[r]; ok {
					break
				}
				f = a.nodes[f].fail
			}
			if w, ok := a.nodes[f].next[r]; ok && w != v {
				a.nodes[v].fail = w
			}

			fv := a.nodes[v].fail
			if len(a.nodes[fv].out) > 0 {
				a.nodes[v].dict = fv
			} else {
				a.nodes[v].dict = a.nodes[fv].dict
			}
			queue = append(queue, v)
		}
	}
}

// Size số pattern đã nạp
func (a *Automaton[T]) Size() int {
	return len(a.patterns)
}

// scan gọi fn cho mọi lần xuất hiện pattern trong một segment
func (a *Automaton[T]) scan(seg Segment, fn func(m Match[T])) {
	cur := int32(0)
	for i, r := range seg.Runes {
		for cur != 0 {
			if _, ok := a.nodes[cur].next[r]; ok {
				break
			}
			cur = a.nodes[cur].fail
		}
		if nxt, ok := a.nodes[cur].next[r]; ok {
			cur = nxt
		}

		end := seg.Start + i + 1
		for n := cur; n > 0; n = a.nodes[n].dict {
			for _, pi := range a.nodes[n].out {
				e := &a.patterns[pi]
				fn(Match[T]{Pattern: e.Pattern, Start: end - e.length, End: end})
			}
		}
	}
}

// FindAll trả về mọi match trên text, theo thứ tự vị trí kết thúc
func (a *Automaton[T]) FindAll(text Text) []Match[T] {
	var matches []Match[T]
	for _, seg := range text.segments {
		a.scan(seg, func(m Match[T]) {
			matches = append(matches, m)
		})
	}
	return matches
}

// Best chọn match tốt nhất trong số các match được accept chấp nhận.
// accept nhận cả vị trí match nên có thể loại match theo ngữ cảnh xung quanh.
// Thứ tự ưu tiên: dài hơn, xuất hiện sớm hơn, tên chuẩn hơn alias, sau đó tie
// (có thể nil) quyết định giữa hai giá trị.
func (a *Automaton[T]) Best(text Text, accept func(Match[T]) bool, tie func(x, y T) bool) (Match[T], bool) {
	var (
		best  Match[T]
		found bool
	)
	for _, seg := range text.segments {
		a.scan(seg, func(m Match[T]) {
			if accept != nil && !accept(m) {
				return
			}
			if !found || better(m, best, tie) {
				best, found = m, true
			}
		})
	}
	return best, found
}

// LongestAt độ dài (rune) của pattern dài nhất bắt đầu đúng tại offset pos
// và được accept (có thể nil) chấp nhận. Trả về 0 nếu không có.
func (a *Automaton[T]) LongestAt(text Text, pos int, accept func(Pattern[T]) bool) int {
	seg, i, ok := text.segmentAt(pos)
	if !ok {
		return 0
	}
	longest := 0
	cur := int32(0)
	for k, r := range seg.Runes[i:] {
		nxt, ok := a.nodes[cur].next[r]
		if !ok {
			break
		}
		cur = nxt
		for _, pi := range a.nodes[cur].out {
			if accept == nil || accept(a.patterns[pi].Pattern) {
				longest = k + 1
				break
			}
		}
	}
	return longest
}

func better[T any](m, other Match[T], tie func(x, y T) bool) bool {
	if m.Len() != other.Len() {
		return m.Len() > other.Len()
	}
	if m.Start != other.Start {
		return m.Start < other.Start
	}
	if m.Alias != other.Alias {
		return !m.Alias
	}
	if tie != nil {
		return tie(m.Value, other.Value)
	}
	return false
}
