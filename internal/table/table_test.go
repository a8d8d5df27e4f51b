package table

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/gazetteer"
	"github.com/cn-address-resolver/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T) *resolver.Executor {
	t.Helper()
	g, err := gazetteer.Default()
	require.NoError(t, err)
	return resolver.NewExecutor(resolver.New(g, resolver.Options{}), 2, 2)
}

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := NewFrame(
		Series{Name: "id", Values: []any{1, 2, 3, 4}},
		Series{Name: "address", Values: []any{
			"上海市徐汇区虹漕路461号58号楼5楼",
			"广东省深圳市南山区科技园高新南四道18号",
			nil,
			"科技园",
		}},
	)
	require.NoError(t, err)
	return f
}

func TestNewFrame_Validation(t *testing.T) {
	_, err := NewFrame(Series{Name: "a", Values: []any{1}}, Series{Name: "a", Values: []any{2}})
	assert.True(t, errors.Is(err, ErrColumnConflict))

	_, err = NewFrame(Series{Name: "a", Values: []any{1}}, Series{Name: "b", Values: []any{1, 2}})
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	f, err := NewFrame()
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 0, f.Width())
}

func TestTransformColumn_AppendsColumnsAndKeepsOriginals(t *testing.T) {
	in := sampleFrame(t)

	out, err := TransformColumn(context.Background(), newExecutor(t), in, "address", false)
	require.NoError(t, err)

	assert.Equal(t, in.Len(), out.Len())
	assert.Equal(t, []string{"id", "address", "province", "city", "district", "residual_address", "adcode"}, out.Names())

	for _, name := range in.Names() {
		before, err := in.Column(name)
		require.NoError(t, err)
		after, err := out.Column(name)
		require.NoError(t, err)
		assert.Equal(t, before.Values, after.Values)
	}

	assert.Equal(t, []any{"上海市", "徐汇区", "虹漕路461号58号楼5楼", "310104000000"},
		[]any{out.Row(0)[2], out.Row(0)[4], out.Row(0)[5], out.Row(0)[6]})
	assert.Nil(t, out.Row(0)[3])

	assert.Equal(t, []any{2, "广东省深圳市南山区科技园高新南四道18号", "广东省", "深圳市", "南山区", "科技园高新南四道18号", "440305000000"}, out.Row(1))
	assert.Equal(t, []any{3, nil, nil, nil, nil, "", resolver.NoAdcode}, out.Row(2))
	assert.Equal(t, []any{4, "科技园", nil, nil, nil, "科技园", resolver.NoAdcode}, out.Row(3))

	assert.Equal(t, 2, in.Width())
}

func TestTransformColumn_PositionSensitive(t *testing.T) {
	out, err := TransformColumn(context.Background(), newExecutor(t), sampleFrame(t), "address", true)
	require.NoError(t, err)

	assert.Equal(t, OutputColumns(true), out.Names()[2:])
	pos, err := out.Column(ColumnCityPos)
	require.NoError(t, err)
	assert.Nil(t, pos.Values[0])
	assert.Equal(t, models.Span{Start: 3, End: 6}, pos.Values[1])
	assert.Nil(t, pos.Values[2])
}

func TestTransformColumn_AcceptsRecords(t *testing.T) {
	records := [][]string{
		{"name", "addr"},
		{"a", "深圳南山区科技园"},
		{"b", ""},
	}
	out, err := TransformColumn(context.Background(), newExecutor(t), records, "addr", false)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	adcode, err := out.Column(ColumnAdcode)
	require.NoError(t, err)
	assert.Equal(t, []any{"440305000000", resolver.NoAdcode}, adcode.Values)
}

func TestTransformColumn_AcceptsFrameValue(t *testing.T) {
	out, err := TransformColumn(context.Background(), newExecutor(t), *sampleFrame(t), "address", false)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
}

func TestTransformColumn_Errors(t *testing.T) {
	exec := newExecutor(t)
	ctx := context.Background()

	_, err := TransformColumn(ctx, exec, sampleFrame(t), "nonexistent", false)
	assert.True(t, errors.Is(err, ErrColumnNotFound))

	for _, input := range []any{nil, "address", []string{"a"}, 42, (*Frame)(nil), [][]string{}} {
		_, err = TransformColumn(ctx, exec, input, "address", false)
		assert.True(t, errors.Is(err, ErrUnsupportedInputType), "%T", input)
	}

	conflicting, err := NewFrame(
		Series{Name: "address", Values: []any{"北京"}},
		Series{Name: "adcode", Values: []any{"11"}},
	)
	require.NoError(t, err)
	_, err = TransformColumn(ctx, exec, conflicting, "address", false)
	assert.True(t, errors.Is(err, ErrColumnConflict))
}

func TestTransformColumn_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TransformColumn(ctx, newExecutor(t), sampleFrame(t), "address", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSV_ReadTransformWrite(t *testing.T) {
	in := "\ufeffid,address\n1,泉州市洛江区万安塘西工业区\n2,\"北京朝阳区北苑华贸城\"\n"

	f, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "address"}, f.Names())

	out, err := TransformColumn(context.Background(), newExecutor(t), f, "address", true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, out))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,address,province,city,district,residual_address,adcode,province_pos,city_pos,district_pos", lines[0])
	assert.Equal(t, "1,泉州市洛江区万安塘西工业区,,泉州市,洛江区,万安塘西工业区,350504000000,,0-3,3-6", lines[1])
	assert.Equal(t, "2,北京朝阳区北苑华贸城,北京市,,朝阳区,北苑华贸城,110105000000,0-2,,2-5", lines[2])
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrUnsupportedInputType))

	_, err = ReadCSV(strings.NewReader("a,b\n1\n"))
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}
