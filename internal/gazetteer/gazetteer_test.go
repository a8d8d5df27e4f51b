package gazetteer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Gazetteer {
	t.Helper()
	g, err := Default()
	require.NoError(t, err)
	return g
}

// loadFixture nạp bảng rút gọn trong testdata, số lượng region cố định
func loadFixture(t *testing.T) *Gazetteer {
	t.Helper()
	g, err := LoadFile(filepath.Join("testdata", "regions_core.yaml"))
	require.NoError(t, err)
	return g
}

func TestDefault_LoadsNationalTable(t *testing.T) {
	g := loadDefault(t)

	assert.Equal(t, "2023.06", g.Version())
	counts := g.Counts()
	assert.Equal(t, 34, counts[models.LevelProvince])
	assert.GreaterOrEqual(t, counts[models.LevelCity], 340)
	assert.GreaterOrEqual(t, counts[models.LevelDistrict], 2800)
	assert.Equal(t, counts[models.LevelProvince]+counts[models.LevelCity]+counts[models.LevelDistrict], g.Len())

	for code, name := range map[string]string{
		"220200000000": "吉林市",
		"220204000000": "船营区",
		"320106000000": "鼓楼区",
		"320412000000": "武进区",
		"429004000000": "仙桃市",
		"500229000000": "城口县",
		"659001000000": "石河子市",
	} {
		r, err := g.LookupByCode(code)
		require.NoError(t, err, code)
		assert.Equal(t, name, r.Name)
	}

	guangdong := g.ChildrenOf("440000000000")
	assert.Len(t, guangdong, 21)

	county, err := g.LookupByCode("500200000000")
	require.NoError(t, err)
	assert.Equal(t, "重庆市辖县", county.Name)
	assert.Empty(t, county.Aliases)
}

func TestFixture_LoadsReducedTable(t *testing.T) {
	g := loadFixture(t)

	assert.Equal(t, "2023.06-core", g.Version())
	counts := g.Counts()
	assert.Equal(t, 34, counts[models.LevelProvince])
	assert.Greater(t, counts[models.LevelCity], 30)
	assert.Greater(t, counts[models.LevelDistrict], 150)
	assert.Less(t, g.Len(), loadDefault(t).Len())
}

func TestDefault_HierarchyIsConsistent(t *testing.T) {
	g := loadDefault(t)

	for _, r := range g.Regions() {
		assert.Equal(t, g.Version(), r.GazetteerVersion)
		if r.Level == models.LevelProvince {
			assert.Empty(t, r.ParentCode, r.Name)
			continue
		}
		parent, err := g.LookupByCode(r.ParentCode)
		require.NoError(t, err, r.Name)
		wantLevel, _ := r.Level.Parent()
		assert.Equal(t, wantLevel, parent.Level, r.Name)
		assert.True(t, normalizer.IsAncestorCode(parent.Code, r.Code), r.Name)
	}
}

func TestLookupByCode(t *testing.T) {
	g := loadFixture(t)

	r, err := g.LookupByCode("440305000000")
	require.NoError(t, err)
	assert.Equal(t, "南山区", r.Name)
	assert.Equal(t, models.LevelDistrict, r.Level)
	assert.Equal(t, "440300000000", r.ParentCode)

	_, err = g.LookupByCode("440399000000")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupPartial(t *testing.T) {
	g := loadFixture(t)

	r, err := g.LookupPartial("4403")
	require.NoError(t, err)
	assert.Equal(t, "深圳市", r.Name)

	r, err = g.LookupPartial("44")
	require.NoError(t, err)
	assert.Equal(t, "广东省", r.Name)

	_, err = g.LookupPartial("44x3")
	assert.True(t, errors.Is(err, normalizer.ErrInvalidCodeFormat))

	_, err = g.LookupPartial("9999")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestChildrenOf(t *testing.T) {
	g := loadFixture(t)

	provinces := g.ChildrenOf("")
	assert.Len(t, provinces, 34)
	assert.Equal(t, "北京市", provinces[0].Name)

	cities := g.ChildrenOf("440000000000")
	names := make([]string, 0, len(cities))
	for _, c := range cities {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"广州市", "深圳市", "佛山市", "东莞市"}, names)

	assert.Empty(t, g.ChildrenOf("440305000000"))
	assert.Empty(t, g.ChildrenOf("999999000000"))
}

func TestCandidatesAtLevel_AllowsRepeatedNamesUnderDifferentParents(t *testing.T) {
	g := loadFixture(t)

	var chaoyang []string
	for _, r := range g.CandidatesAtLevel(models.LevelDistrict) {
		if r.Name == "朝阳区" {
			chaoyang = append(chaoyang, r.Code)
		}
	}
	assert.Equal(t, []string{"110105000000", "220104000000"}, chaoyang)
}

func TestAncestorsAndIsWithin(t *testing.T) {
	g := loadFixture(t)

	chain := g.Ancestors("310104000000")
	require.Len(t, chain, 2)
	assert.Equal(t, "上海市", chain[0].Name)
	assert.Equal(t, models.LevelProvince, chain[0].Level)
	assert.Equal(t, "310100000000", chain[1].Code)

	xuhui, err := g.LookupByCode("310104000000")
	require.NoError(t, err)
	assert.True(t, g.IsWithin(xuhui, "310000000000"))
	assert.True(t, g.IsWithin(xuhui, "310100000000"))
	assert.False(t, g.IsWithin(xuhui, "310104000000"))
	assert.False(t, g.IsWithin(xuhui, "440000000000"))
	assert.Nil(t, g.Ancestors("nope"))
}

func TestDerivedShortNames(t *testing.T) {
	g := loadDefault(t)

	cases := map[string]string{
		"440000000000": "广东",
		"440300000000": "深圳",
		"450000000000": "广西",
		"650000000000": "新疆",
		"810000000000": "香港",
		"150000000000": "内蒙古",
	}
	for code, short := range cases {
		r, err := g.LookupByCode(code)
		require.NoError(t, err)
		assert.True(t, r.IsAlias(short), "%s should carry alias %s", r.Name, short)
	}

	inner, err := g.LookupByCode("150000000000")
	require.NoError(t, err)
	assert.True(t, inner.IsAlias("内蒙"))

	nanshan, err := g.LookupByCode("440305000000")
	require.NoError(t, err)
	assert.Empty(t, nanshan.Aliases)
}

func TestWithDerivedShortNamesDisabled(t *testing.T) {
	g, err := Default(WithDerivedShortNames(false))
	require.NoError(t, err)

	r, err := g.LookupByCode("440000000000")
	require.NoError(t, err)
	assert.Empty(t, r.Aliases)
}

func TestLocate(t *testing.T) {
	g := loadFixture(t)

	loc, err := g.Locate("440305")
	require.NoError(t, err)
	assert.Equal(t, "南山区", loc.Name)
	assert.InDelta(t, 22.53, loc.Latitude, 0.01)
	assert.InDelta(t, 113.93, loc.Longitude, 0.01)

	_, err = g.Locate("440303")
	assert.True(t, errors.Is(err, ErrNoCoordinates))
}

func TestLoad_Validation(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: ""},
		{name: "no provinces", yaml: "version: x\n"},
		{name: "malformed", yaml: "provinces: [\n"},
		{name: "unknown field", yaml: "provinces:\n  - {code: \"44\", name: 广东省, bogus: 1}\n"},
		{name: "missing name", yaml: "provinces:\n  - {code: \"44\"}\n"},
		{name: "bad code", yaml: "provinces:\n  - {code: \"4x\", name: 广东省}\n"},
		{name: "level mismatch", yaml: "provinces:\n  - {code: \"4403\", name: 深圳市}\n"},
		{name: "duplicate code", yaml: "provinces:\n  - {code: \"44\", name: 广东省}\n  - {code: \"440000\", name: 粤}\n"},
		{name: "duplicate sibling name", yaml: "provinces:\n  - {code: \"44\", name: 广东省}\n  - {code: \"45\", name: 广东省}\n"},
		{name: "alias collides with sibling", yaml: "provinces:\n  - {code: \"44\", name: 广东省}\n  - {code: \"45\", name: 广西, aliases: [广东省]}\n"},
		{name: "child outside parent", yaml: "provinces:\n  - code: \"44\"\n    name: 广东省\n    cities:\n      - {code: \"4501\", name: 南宁市}\n"},
		{name: "district under province", yaml: "provinces:\n  - code: \"44\"\n    name: 广东省\n    districts:\n      - {code: \"440305\", name: 南山区}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLoadFailure), err.Error())
		})
	}
}

func TestLoad_SameNameUnderDifferentParents(t *testing.T) {
	yaml := `
version: test
provinces:
  - code: "11"
    name: 北京市
    cities:
      - code: "1101"
        name: 北京市
        districts:
          - {code: "110105", name: 朝阳区}
  - code: "22"
    name: 吉林省
    cities:
      - code: "2201"
        name: 长春市
        districts:
          - {code: "220104", name: 朝阳区}
`
	g, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, 6, g.Len())
	assert.Equal(t, "test", g.Version())
}

func TestLoad_VersionFallsBackToFingerprint(t *testing.T) {
	g, err := Load(strings.NewReader("provinces:\n  - {code: \"44\", name: 广东省}\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(g.Version(), "sha256:"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, embeddedDataset, 0o644))

	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, loadDefault(t).Len(), g.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrLoadFailure))
}

func TestEncodeDataset_RoundTripsThroughLoad(t *testing.T) {
	ds, err := DecodeDataset(bytes.NewReader(embeddedDataset))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeDataset(&buf, ds))

	g, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, loadDefault(t).Len(), g.Len())
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "宁夏", ShortName("宁夏回族自治区"))
	assert.Equal(t, "澳门", ShortName("澳门特别行政区"))
	assert.Equal(t, "北京", ShortName("北京市"))
	assert.Equal(t, "南山区", ShortName("南山区"))
}
