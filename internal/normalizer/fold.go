package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/width"
)

// punctuation variants folded onto one form
var punctFold = map[rune]rune{
	'・': '·',
	'•': '·',
	'‧': '·',
	'﹒': '.',
	'。': '.',
	'、': ',',
	'，': ',',
	'－': '-',
	'—': '-',
	'–': '-',
}

// Fold maps a rune to the form used for matching: full-width forms become
// half-width, letters are lower-cased and punctuation variants collapse.
// Fold never changes the number of runes, so offsets computed on folded text
// are valid on the original.
func Fold(r rune) rune {
	if p, ok := punctFold[r]; ok {
		return p
	}
	if n := width.LookupRune(r).Narrow(); n != 0 {
		r = n
	}
	return unicode.ToLower(r)
}

// FoldRunes splits s into runes and folds each one.
func FoldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = Fold(r)
	}
	return runes
}

// FoldString is FoldRunes as a string.
func FoldString(s string) string {
	return string(FoldRunes(s))
}

// ASCIIName romanizes a region name into a lowercase ASCII search key,
// e.g. 深圳市 -> "shen zhen shi".
func ASCIIName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(unidecode.Unidecode(s))), " ")
}

// CompactASCII is ASCIIName without spaces ("shenzhenshi"), used to compare
// user queries typed without separators.
func CompactASCII(s string) string {
	return strings.ReplaceAll(ASCIIName(s), " ", "")
}
