package table

import (
	"context"
	"fmt"

	"github.com/cn-address-resolver/internal/resolver"
)

// Tên các cột kết quả
const (
	ColumnProvince    = "province"
	ColumnCity        = "city"
	ColumnDistrict    = "district"
	ColumnResidual    = "residual_address"
	ColumnAdcode      = "adcode"
	ColumnProvincePos = "province_pos"
	ColumnCityPos     = "city_pos"
	ColumnDistrictPos = "district_pos"
)

// OutputColumns tên các cột được thêm vào theo positionSensitive
func OutputColumns(positionSensitive bool) []string {
	cols := []string{ColumnProvince, ColumnCity, ColumnDistrict, ColumnResidual, ColumnAdcode}
	if positionSensitive {
		cols = append(cols, ColumnProvincePos, ColumnCityPos, ColumnDistrictPos)
	}
	return cols
}

// AsFrame nhận các dạng bảng được hỗ trợ: *Frame, Frame và [][]string (dòng đầu là header)
func AsFrame(input any) (*Frame, error) {
	switch v := input.(type) {
	case *Frame:
		if v == nil {
			return nil, fmt.Errorf("%w: nil frame", ErrUnsupportedInputType)
		}
		return v, nil
	case Frame:
		return &v, nil
	case [][]string:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: records without header", ErrUnsupportedInputType)
		}
		return FromRecords(v[0], v[1:])
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedInputType, input)
	}
}

// TransformColumn resolve mọi giá trị của cột column và trả về bảng mới gồm
// toàn bộ cột cũ (giữ nguyên) cộng các cột province, city, district,
// residual_address, adcode và, nếu positionSensitive, ba cột span.
// Giá trị null hoặc không match cho ra null ở các cột tên/span.
func TransformColumn(ctx context.Context, exec *resolver.Executor, input any, column string, positionSensitive bool) (*Frame, error) {
	frame, err := AsFrame(input)
	if err != nil {
		return nil, err
	}
	source, err := frame.Column(column)
	if err != nil {
		return nil, err
	}
	names := OutputColumns(positionSensitive)
	for _, name := range names {
		if frame.Has(name) {
			return nil, fmt.Errorf("%w: output column %q is already present", ErrColumnConflict, name)
		}
	}

	opts := exec.Resolver().Options()
	opts.PositionSensitive = positionSensitive
	exec = exec.WithOptions(opts)

	n := frame.Len()
	out := make([]Series, len(names))
	for i, name := range names {
		out[i] = Series{Name: name, Values: make([]any, n)}
	}

	r := exec.Resolver()
	err = exec.Each(ctx, n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			rec := r.Resolve(stringValue(source.Values[i]))
			out[0].Values[i] = nullable(rec.Province)
			out[1].Values[i] = nullable(rec.City)
			out[2].Values[i] = nullable(rec.District)
			out[3].Values[i] = rec.ResidualAddress
			out[4].Values[i] = rec.Adcode
			if positionSensitive {
				if rec.ProvinceSpan != nil {
					out[5].Values[i] = *rec.ProvinceSpan
				}
				if rec.CitySpan != nil {
					out[6].Values[i] = *rec.CitySpan
				}
				if rec.DistrictSpan != nil {
					out[7].Values[i] = *rec.DistrictSpan
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return frame.With(out...)
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	default:
		return formatValue(x)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
