package gazetteer

import (
	"testing"

	"github.com/cn-address-resolver/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_ByPinyin(t *testing.T) {
	g := loadFixture(t)

	got := g.Suggest("shenzhen", models.LevelCity, 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "440300000000", got[0].Region.Code)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.LessOrEqual(t, len(got), 3)
}

func TestSuggest_ByMistypedHanName(t *testing.T) {
	g := loadFixture(t)

	got := g.Suggest("深证市", models.LevelCity, 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "深圳市", got[0].Region.Name)
}

func TestSuggest_ExactNameScoresOne(t *testing.T) {
	g := loadFixture(t)

	got := g.Suggest("徐汇区", models.LevelDistrict, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "310104000000", got[0].Region.Code)
	assert.Equal(t, 1.0, got[0].Score)
}

func TestSuggest_SortedByScore(t *testing.T) {
	g := loadFixture(t)

	got := g.Suggest("guangzhou", 0, 0)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	assert.LessOrEqual(t, len(got), DefaultSuggestLimit)
}

func TestSuggest_EmptyQuery(t *testing.T) {
	g := loadFixture(t)
	assert.Nil(t, g.Suggest("   ", 0, 5))
}
