package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, '1', Fold('１'))
	assert.Equal(t, 'a', Fold('Ａ'))
	assert.Equal(t, 'a', Fold('A'))
	assert.Equal(t, '(', Fold('（'))
	assert.Equal(t, '·', Fold('・'))
	assert.Equal(t, ' ', Fold('　'))
	assert.Equal(t, '深', Fold('深'))
}

func TestFoldRunes_KeepsLength(t *testing.T) {
	inputs := []string{
		"上海市徐汇区虹漕路461号58号楼5楼",
		"广东省深圳市南山区科技园高新南四道１８号",
		"ＡＢＣ（一期）・二楼",
	}
	for _, in := range inputs {
		assert.Len(t, FoldRunes(in), len([]rune(in)), in)
	}
	assert.Equal(t, "南山区18号", FoldString("南山区１８号"))
}

func TestASCIIName(t *testing.T) {
	assert.Equal(t, "shen zhen shi", ASCIIName("深圳市"))
	assert.Equal(t, "shenzhenshi", CompactASCII("深圳市"))
	assert.Equal(t, "", ASCIIName(""))
}
