package services

import (
	"errors"
	"testing"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/normalizer"
	"github.com/cn-address-resolver/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegionService_Get(t *testing.T) {
	rs := NewRegionService(newTestGazetteer(t), nil, zap.NewNop())

	detail, err := rs.Get("440305")
	require.NoError(t, err)
	assert.Equal(t, "南山区", detail.Region.Name)
	require.Len(t, detail.Ancestors, 2)
	assert.Equal(t, "广东省", detail.Ancestors[0].Name)
	assert.Equal(t, "深圳市", detail.Ancestors[1].Name)
	assert.Equal(t, 0, detail.Children)

	detail, err = rs.Get("44")
	require.NoError(t, err)
	assert.Empty(t, detail.Ancestors)
	assert.Greater(t, detail.Children, 0)
	require.NotNil(t, detail.Location)

	_, err = rs.Get("4403x")
	assert.True(t, errors.Is(err, normalizer.ErrInvalidCodeFormat))
	_, err = rs.Get("990000")
	assert.True(t, errors.Is(err, gazetteer.ErrNotFound))
}

func TestRegionService_List(t *testing.T) {
	g := newTestGazetteer(t)
	rs := NewRegionService(g, nil, zap.NewNop())

	provinces, err := rs.List(0, "")
	require.NoError(t, err)
	assert.Len(t, provinces, 34)

	cities, err := rs.List(models.LevelCity, "")
	require.NoError(t, err)
	assert.Len(t, cities, len(g.CandidatesAtLevel(models.LevelCity)))

	districts, err := rs.List(models.LevelDistrict, "44")
	require.NoError(t, err)
	require.NotEmpty(t, districts)
	for _, d := range districts {
		assert.Equal(t, "44", d.Code[:2])
	}

	children, err := rs.List(0, "4403")
	require.NoError(t, err)
	for _, c := range children {
		assert.Equal(t, "440300000000", c.ParentCode)
	}

	_, err = rs.List(models.LevelProvince, "44")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestRegionService_SearchLocal(t *testing.T) {
	rs := NewRegionService(newTestGazetteer(t), nil, zap.NewNop())

	matches, source, err := rs.Search("shenzhen", models.LevelCity, 5)
	require.NoError(t, err)
	assert.Equal(t, SearchSourceLocal, source)
	require.NotEmpty(t, matches)
	assert.Equal(t, "440300000000", matches[0].Region.Code)

	_, _, err = rs.Search("", 0, 5)
	assert.True(t, errors.Is(err, search.ErrEmptyQuery))
}

func TestRegionService_FromHitsSkipsUnknownCodes(t *testing.T) {
	rs := NewRegionService(newTestGazetteer(t), nil, zap.NewNop())

	got := rs.fromHits([]search.Hit{
		{Code: "440300000000", Score: 0.9},
		{Code: "999999000000", Score: 0.8},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "深圳市", got[0].Region.Name)
	assert.Equal(t, 0.9, got[0].Score)
}
