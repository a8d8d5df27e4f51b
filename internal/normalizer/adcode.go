package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cn-address-resolver/app/models"
	"golang.org/x/text/width"
)

// CodeWidth is the width of a full administrative code (国家统计局 12-digit form).
const CodeWidth = 12

// ErrInvalidCodeFormat is returned for codes with non-digit characters, an
// unsupported length, or content below district level.
var ErrInvalidCodeFormat = errors.New("invalid administrative code format")

// prefix width per level: 省 2, 市 4, 区/县 6
var levelWidth = map[models.Level]int{
	models.LevelProvince: 2,
	models.LevelCity:     4,
	models.LevelDistrict: 6,
}

// NormalizeCode pads a partial code ("44", "4403", "440305" or a full
// 12-digit code) with zeros to CodeWidth and infers the level it denotes.
func NormalizeCode(partial string) (string, models.Level, error) {
	code := width.Narrow.String(strings.TrimSpace(partial))
	switch len(code) {
	case 2, 4, 6, CodeWidth:
	default:
		return "", 0, fmt.Errorf("%w: %q has unsupported length %d", ErrInvalidCodeFormat, partial, len(code))
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", 0, fmt.Errorf("%w: %q contains non-digit characters", ErrInvalidCodeFormat, partial)
		}
	}

	full := code + strings.Repeat("0", CodeWidth-len(code))
	if strings.Trim(full[6:], "0") != "" {
		return "", 0, fmt.Errorf("%w: %q is below district level", ErrInvalidCodeFormat, partial)
	}

	level, ok := levelOf(full)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q has an empty province prefix", ErrInvalidCodeFormat, partial)
	}
	return full, level, nil
}

// levelOf infers the level from the deepest non-zero digit pair.
func levelOf(full string) (models.Level, bool) {
	switch {
	case full[0:2] == "00":
		return 0, false
	case full[2:6] == "0000":
		return models.LevelProvince, true
	case full[4:6] == "00":
		return models.LevelCity, true
	default:
		return models.LevelDistrict, true
	}
}

// ShortCode trims a full code to the prefix width of its level ("440305000000" -> "440305").
func ShortCode(full string) string {
	_, level, err := NormalizeCode(full)
	if err != nil {
		return full
	}
	return full[:levelWidth[level]]
}

// ParentCode derives the code of the enclosing region one level up.
// Provinces have no parent.
func ParentCode(full string) (string, bool) {
	code, level, err := NormalizeCode(full)
	if err != nil {
		return "", false
	}
	parent, ok := level.Parent()
	if !ok {
		return "", false
	}
	w := levelWidth[parent]
	return code[:w] + strings.Repeat("0", CodeWidth-w), true
}

// IsAncestorCode reports whether ancestor's prefix encloses code.
func IsAncestorCode(ancestor, code string) bool {
	a, level, err := NormalizeCode(ancestor)
	if err != nil {
		return false
	}
	w := levelWidth[level]
	return len(code) == CodeWidth && code != a && code[:w] == a[:w]
}
