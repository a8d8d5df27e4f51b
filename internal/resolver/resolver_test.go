package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	defaultGazetteer     *gazetteer.Gazetteer
	defaultGazetteerOnce sync.Once
)

func testGazetteer(t testing.TB) *gazetteer.Gazetteer {
	t.Helper()
	defaultGazetteerOnce.Do(func() {
		g, err := gazetteer.Default()
		if err != nil {
			panic(err)
		}
		defaultGazetteer = g
	})
	return defaultGazetteer
}

type goldenCase struct {
	Name            string       `json:"name"`
	Input           string       `json:"input"`
	Province        string       `json:"province"`
	City            string       `json:"city"`
	District        string       `json:"district"`
	ResidualAddress string       `json:"residual_address"`
	Adcode          string       `json:"adcode"`
	ProvincePos     *models.Span `json:"province_pos"`
	CityPos         *models.Span `json:"city_pos"`
	DistrictPos     *models.Span `json:"district_pos"`
}

func loadGolden(t *testing.T) []goldenCase {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "golden.json"))
	require.NoError(t, err)
	var cases []goldenCase
	require.NoError(t, json.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestResolve_Golden(t *testing.T) {
	r := New(testGazetteer(t), Options{PositionSensitive: true})

	for _, tc := range loadGolden(t) {
		t.Run(tc.Name, func(t *testing.T) {
			got := r.Resolve(tc.Input)

			assert.Equal(t, tc.Input, got.Raw)
			assert.Equal(t, tc.Province, got.Province)
			assert.Equal(t, tc.City, got.City)
			assert.Equal(t, tc.District, got.District)
			assert.Equal(t, tc.ResidualAddress, got.ResidualAddress)
			assert.Equal(t, tc.Adcode, got.Adcode)
			assert.Equal(t, tc.ProvincePos, got.ProvinceSpan)
			assert.Equal(t, tc.CityPos, got.CitySpan)
			assert.Equal(t, tc.DistrictPos, got.DistrictSpan)
		})
	}
}

func TestResolve_HierarchyIsConsistent(t *testing.T) {
	g := testGazetteer(t)
	r := New(g, Options{})

	for _, tc := range loadGolden(t) {
		got := r.Resolve(tc.Input)
		if got.CityCode != "" && got.ProvinceCode != "" {
			city, err := g.LookupByCode(got.CityCode)
			require.NoError(t, err)
			assert.Equal(t, got.ProvinceCode, city.ParentCode, tc.Name)
		}
		if got.DistrictCode != "" && got.CityCode != "" {
			district, err := g.LookupByCode(got.DistrictCode)
			require.NoError(t, err)
			assert.Equal(t, got.CityCode, district.ParentCode, tc.Name)
		}
	}
}

func TestResolve_SpansPointAtRegionNames(t *testing.T) {
	g := testGazetteer(t)
	r := New(g, Options{PositionSensitive: true})

	for _, tc := range loadGolden(t) {
		got := r.Resolve(tc.Input)
		runes := []rune(tc.Input)
		for _, level := range models.Levels {
			span := got.Span(level)
			if span == nil {
				continue
			}
			region, err := g.LookupByCode(got.Code(level))
			require.NoError(t, err)
			surface := string(runes[span.Start:span.End])
			assert.Contains(t, region.Names(), surface, "%s %s", tc.Name, level)
		}
	}
}

func TestResolve_ResidualHasNothingLeftToMatch(t *testing.T) {
	r := New(testGazetteer(t), Options{})

	for _, tc := range loadGolden(t) {
		first := r.Resolve(tc.Input)
		again := r.Resolve(first.ResidualAddress)
		for _, level := range models.Levels {
			if first.Name(level) != "" {
				assert.Empty(t, again.Name(level), "%s %s", tc.Name, level)
			}
		}
	}
}

// Tên rút gọn của mọi province và city dùng làm tên đường: địa chỉ vẫn resolve
// về quận đã nêu và phần còn lại không được nhận thành province hay city.
func TestResolve_ShortNamesAsStreetNames(t *testing.T) {
	g := testGazetteer(t)
	r := New(g, Options{})
	streets := []string{"路8号", "北路12号", "大道1号", "街3号"}

	checked := 0
	for _, level := range []models.Level{models.LevelProvince, models.LevelCity} {
		for _, region := range g.CandidatesAtLevel(level) {
			for _, alias := range region.Aliases {
				for _, street := range streets {
					input := "广东省深圳市南山区" + alias + street
					got := r.Resolve(input)
					require.Equal(t, "440305000000", got.Adcode, input)
					assert.Equal(t, alias+street, got.ResidualAddress, input)

					again := r.Resolve(got.ResidualAddress)
					assert.Empty(t, again.Province, input)
					assert.Empty(t, again.City, input)
					checked++
				}
			}
		}
	}
	assert.Greater(t, checked, 1000)
}

// Tên rút gọn nằm ở đầu một tên dài hơn của cấp dưới (吉林 trong 吉林市,
// 河北 trong 河北区) không được match thay cho tên đó.
func TestResolve_ShortNameAtStartOfLowerLevelName(t *testing.T) {
	g := testGazetteer(t)
	r := New(g, Options{})

	var aliases, provinces []string
	for _, level := range []models.Level{models.LevelProvince, models.LevelCity} {
		for _, region := range g.CandidatesAtLevel(level) {
			aliases = append(aliases, region.Aliases...)
			if level == models.LevelProvince {
				provinces = append(provinces, region.Name)
			}
		}
	}
	startsWithProvince := func(name string) bool {
		return slices.ContainsFunc(provinces, func(p string) bool { return strings.HasPrefix(name, p) })
	}

	checked := 0
	for _, level := range []models.Level{models.LevelCity, models.LevelDistrict} {
		for _, region := range g.CandidatesAtLevel(level) {
			// 北京市, 重庆市辖县: tên province đứng đầu được match đúng là province
			if startsWithProvince(region.Name) {
				continue
			}
			for _, alias := range aliases {
				if !strings.HasPrefix(region.Name, alias) || region.IsAlias(alias) {
					continue
				}
				got := r.Resolve(region.Name + "人民路1号")
				assert.Equal(t, region.Name, got.Name(level), "%s %s", region.Name, alias)
				assert.Equal(t, "人民路1号", got.ResidualAddress, region.Name)
				for _, other := range models.Levels {
					if other != level {
						assert.Empty(t, got.Name(other), "%s %s", region.Name, other)
					}
				}
				checked++
			}
		}
	}
	assert.Greater(t, checked, 20)

	got := r.Resolve("黑河市五大连池市")
	assert.Equal(t, "五大连池市", got.District)
	assert.Equal(t, "黑河市", got.City)
}

func TestResolve_NoSpansUnlessPositionSensitive(t *testing.T) {
	r := New(testGazetteer(t), Options{})

	got := r.Resolve("广东省深圳市南山区科技园")
	assert.Equal(t, "南山区", got.District)
	assert.Nil(t, got.ProvinceSpan)
	assert.Nil(t, got.CitySpan)
	assert.Nil(t, got.DistrictSpan)
}

func TestResolve_DegradedInput(t *testing.T) {
	r := New(testGazetteer(t), Options{PositionSensitive: true})

	for _, input := range []string{"", "   ", "hello world", "12345", "科技园"} {
		got := r.Resolve(input)
		assert.False(t, got.Matched(), input)
		assert.Equal(t, NoAdcode, got.Adcode, input)
		assert.Nil(t, got.ProvinceSpan)
	}
}

func TestResolve_FullWidthAndHalfWidthAgree(t *testing.T) {
	r := New(testGazetteer(t), Options{PositionSensitive: true})

	half := r.Resolve("广东省深圳市南山区18号")
	full := r.Resolve("广东省深圳市南山区１８号")
	assert.Equal(t, half.Adcode, full.Adcode)
	assert.Equal(t, half.DistrictSpan, full.DistrictSpan)
	assert.Equal(t, "１８号", full.ResidualAddress)
}

func TestResolve_FillParents(t *testing.T) {
	r := New(testGazetteer(t), Options{FillParents: true, PositionSensitive: true})

	got := r.Resolve("深圳南山区科技园")
	assert.Equal(t, "广东省", got.Province)
	assert.Equal(t, "440000000000", got.ProvinceCode)
	assert.Nil(t, got.ProvinceSpan)
	assert.Equal(t, "深圳市", got.City)
	assert.NotNil(t, got.CitySpan)
	assert.Equal(t, "440305000000", got.Adcode)

	got = r.Resolve("上海市徐汇区虹漕路461号")
	assert.Equal(t, "上海市", got.City)
	assert.Equal(t, "310100000000", got.CityCode)
	assert.Equal(t, "虹漕路461号", got.ResidualAddress)

	got = r.Resolve("科技园")
	assert.False(t, got.Matched())
}

func TestResolve_PreferredScopeFallsBackToAllDistricts(t *testing.T) {
	r := New(testGazetteer(t), Options{})

	got := r.Resolve("广东省西湖区")
	assert.Equal(t, "广东省", got.Province)
	assert.Equal(t, "西湖区", got.District)
	assert.Equal(t, "330106000000", got.DistrictCode)
}

func TestWithOptions(t *testing.T) {
	r := New(testGazetteer(t), Options{})
	assert.Same(t, r, r.WithOptions(Options{}))

	pos := r.WithOptions(Options{PositionSensitive: true})
	assert.NotSame(t, r, pos)
	assert.True(t, pos.Options().PositionSensitive)
	assert.False(t, r.Options().PositionSensitive)
	assert.Same(t, r.Gazetteer(), pos.Gazetteer())
}

func TestScope(t *testing.T) {
	g := testGazetteer(t)
	shenzhen, err := g.LookupByCode("440300000000")
	require.NoError(t, err)
	guangdong, err := g.LookupByCode("440000000000")
	require.NoError(t, err)
	nanshan, err := g.LookupByCode("440305000000")
	require.NoError(t, err)
	xuhui, err := g.LookupByCode("310104000000")
	require.NoError(t, err)

	byParent := newScope(models.LevelDistrict, shenzhen, shenzhen)
	assert.True(t, byParent.Contains(g, nanshan))
	assert.False(t, byParent.Contains(g, xuhui))

	preferred := newScope(models.LevelDistrict, nil, guangdong)
	assert.Equal(t, guangdong, preferred.Preferred)
	assert.True(t, preferred.Contains(g, nanshan))
	assert.False(t, preferred.Contains(g, xuhui))
	assert.False(t, preferred.Contains(g, shenzhen))

	all := newScope(models.LevelDistrict, nil, nil)
	assert.True(t, all.Unscoped())
	assert.True(t, all.Contains(g, xuhui))
}
