package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cn-address-resolver/app/config"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/resolver"
	"github.com/cn-address-resolver/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGazetteer(t *testing.T) *gazetteer.Gazetteer {
	t.Helper()
	g, err := gazetteer.Default()
	require.NoError(t, err)
	return g
}

func newTestAddressService(t *testing.T, cache ICacheService, maxAddresses int) *AddressService {
	t.Helper()
	exec := resolver.NewExecutor(resolver.New(newTestGazetteer(t), resolver.Options{}), 2, 4)
	return NewAddressService(exec, cache, config.BatchConfig{MaxAddresses: maxAddresses, JobTTL: time.Hour}, zap.NewNop())
}

func TestAddressService_ResolveOne(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(100, time.Hour, zap.NewNop())
	as := newTestAddressService(t, cache, 100)

	record, hit, err := as.ResolveOne(ctx, "深圳南山区科技园", resolver.Options{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "440305000000", record.Adcode)
	assert.Equal(t, "深圳市", record.City)
	assert.Equal(t, "科技园", record.ResidualAddress)
	assert.Nil(t, record.DistrictSpan)

	again, hit, err := as.ResolveOne(ctx, "深圳南山区科技园", resolver.Options{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, record, again)

	// tùy chọn khác nằm ở cache key khác
	withPos, hit, err := as.ResolveOne(ctx, "深圳南山区科技园", resolver.Options{PositionSensitive: true})
	require.NoError(t, err)
	assert.False(t, hit)
	require.NotNil(t, withPos.DistrictSpan)
	assert.Equal(t, 2, withPos.DistrictSpan.Start)
}

func TestAddressService_ResolveOneWithoutCache(t *testing.T) {
	as := newTestAddressService(t, nil, 100)

	record, hit, err := as.ResolveOne(context.Background(), "no admin names here", resolver.Options{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, resolver.NoAdcode, record.Adcode)
	assert.Equal(t, "no admin names here", record.ResidualAddress)
}

func TestAddressService_Transform(t *testing.T) {
	as := newTestAddressService(t, nil, 3)
	ctx := context.Background()

	records, err := as.Transform(ctx, []string{"北京朝阳区北苑华贸城", "", "广东省深圳市南山区"}, resolver.Options{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "110105000000", records[0].Adcode)
	assert.Equal(t, resolver.NoAdcode, records[1].Adcode)
	assert.Equal(t, "440305000000", records[2].Adcode)

	_, err = as.Transform(ctx, make([]string, 4), resolver.Options{})
	assert.True(t, errors.Is(err, ErrTooManyAddresses))
}

func TestAddressService_JobLifecycle(t *testing.T) {
	as := newTestAddressService(t, nil, 100)

	addresses := []string{"上海市徐汇区虹漕路461号", "泉州市洛江区万安塘西工业区", "", "北京朝阳区", "深圳南山区", "科技园"}
	info, err := as.SubmitJob(addresses, resolver.Options{FillParents: true})
	require.NoError(t, err)
	assert.Equal(t, len(addresses), info.Total)
	assert.NotEmpty(t, info.JobID)

	as.Wait()

	status, err := as.GetJobStatus(info.JobID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusDone, status.Status)
	assert.Equal(t, len(addresses), status.Processed)
	assert.Equal(t, 1.0, status.Progress)
	assert.NotNil(t, status.FinishedAt)

	results, err := as.GetJobResults(info.JobID)
	require.NoError(t, err)
	require.Len(t, results, len(addresses))
	assert.Equal(t, "310104000000", results[0].Adcode)
	assert.Equal(t, "福建省", results[1].Province)
	assert.Equal(t, resolver.NoAdcode, results[2].Adcode)

	assert.Equal(t, 1, as.JobCounts()[JobStatusDone])
	assert.Len(t, as.ListJobs(), 1)
}

func TestAddressService_JobErrors(t *testing.T) {
	as := newTestAddressService(t, nil, 2)

	_, err := as.GetJobStatus("missing")
	assert.True(t, errors.Is(err, ErrJobNotFound))
	_, err = as.GetJobResults("missing")
	assert.True(t, errors.Is(err, ErrJobNotFound))

	_, err = as.SubmitJob([]string{"a", "b", "c"}, resolver.Options{})
	assert.True(t, errors.Is(err, ErrTooManyAddresses))
}

func TestAddressService_TransformTable(t *testing.T) {
	as := newTestAddressService(t, nil, 10)

	records := [][]string{{"id", "addr"}, {"1", "深圳南山区科技园"}}
	out, err := as.TransformTable(context.Background(), records, "addr", true)
	require.NoError(t, err)
	assert.Equal(t, table.OutputColumns(true), out.Names()[2:])

	_, err = as.TransformTable(context.Background(), records, "missing", false)
	assert.True(t, errors.Is(err, table.ErrColumnNotFound))

	_, err = as.TransformTable(context.Background(), 42, "addr", false)
	assert.True(t, errors.Is(err, table.ErrUnsupportedInputType))
}
