package matcher

import (
	"strings"

	"github.com/cn-address-resolver/internal/normalizer"
)

// Segment đoạn liên tục chưa bị tiêu thụ của chuỗi đầu vào, đã fold.
// Start là offset (rune) của đoạn trên chuỗi gốc.
type Segment struct {
	Start int
	Runes []rune
}

// End offset ngay sau rune cuối của segment
func (s Segment) End() int { return s.Start + len(s.Runes) }

// Text phần còn lại của một chuỗi địa chỉ sau khi đã cắt các span đã match.
// Match không bao giờ nối qua chỗ đã cắt vì mỗi segment được quét riêng.
type Text struct {
	original []rune
	segments []Segment
}

// NewText fold chuỗi s thành một Text gồm một segment duy nhất
func NewText(s string) Text {
	original := []rune(s)
	folded := make([]rune, len(original))
	for i, r := range original {
		folded[i] = normalizer.Fold(r)
	}
	t := Text{original: original}
	if len(folded) > 0 {
		t.segments = []Segment{{Start: 0, Runes: folded}}
	}
	return t
}

// Segments các đoạn còn lại theo thứ tự
func (t Text) Segments() []Segment {
	return t.segments
}

// Original rune của chuỗi gốc trong [start, end)
func (t Text) Original(start, end int) string {
	if start < 0 || end > len(t.original) || start >= end {
		return ""
	}
	return string(t.original[start:end])
}

// HasPrefixAt báo phần còn lại bắt đầu từ offset pos có mở đầu bằng prefix không.
// So sánh trên rune đã fold và không vượt qua chỗ đã cắt.
func (t Text) HasPrefixAt(pos int, prefix string) bool {
	seg, i, ok := t.segmentAt(pos)
	if !ok {
		return false
	}
	want := normalizer.FoldRunes(prefix)
	if len(want) == 0 || len(seg.Runes)-i < len(want) {
		return false
	}
	for k, r := range want {
		if seg.Runes[i+k] != r {
			return false
		}
	}
	return true
}

// segmentAt tìm segment chứa offset pos và vị trí của pos trong segment đó
func (t Text) segmentAt(pos int) (Segment, int, bool) {
	for _, seg := range t.segments {
		if pos >= seg.Start && pos < seg.End() {
			return seg, pos - seg.Start, true
		}
	}
	return Segment{}, 0, false
}

// Cut trả về Text mới đã bỏ [start, end). Text cũ không bị thay đổi.
func (t Text) Cut(start, end int) Text {
	out := Text{original: t.original, segments: make([]Segment, 0, len(t.segments)+1)}
	for _, seg := range t.segments {
		if end <= seg.Start || start >= seg.End() {
			out.segments = append(out.segments, seg)
			continue
		}
		if start > seg.Start {
			out.segments = append(out.segments, Segment{Start: seg.Start, Runes: seg.Runes[:start-seg.Start]})
		}
		if end < seg.End() {
			out.segments = append(out.segments, Segment{Start: end, Runes: seg.Runes[end-seg.Start:]})
		}
	}
	return out
}

// Residual ghép các đoạn còn lại (dạng gốc, chưa fold) và trim khoảng trắng
func (t Text) Residual() string {
	var sb strings.Builder
	for _, seg := range t.segments {
		sb.WriteString(string(t.original[seg.Start:seg.End()]))
	}
	return strings.TrimSpace(sb.String())
}
