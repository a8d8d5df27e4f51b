package models

import "fmt"

// Span khoảng ký tự [Start, End) tính theo rune trên chuỗi gốc
type Span struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Len độ dài span tính theo rune
func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Start, s.End) }

// AddressRecord kết quả resolve một chuỗi địa chỉ.
// Một cấp không match được để trống (chuỗi rỗng, span nil); đó là kết quả hợp lệ, không phải lỗi.
type AddressRecord struct {
	Raw             string `bson:"raw" json:"raw"`
	Province        string `bson:"province,omitempty" json:"province,omitempty"`
	City            string `bson:"city,omitempty" json:"city,omitempty"`
	District        string `bson:"district,omitempty" json:"district,omitempty"`
	ProvinceCode    string `bson:"province_code,omitempty" json:"province_code,omitempty"`
	CityCode        string `bson:"city_code,omitempty" json:"city_code,omitempty"`
	DistrictCode    string `bson:"district_code,omitempty" json:"district_code,omitempty"`
	ResidualAddress string `bson:"residual_address" json:"residual_address"`
	Adcode          string `bson:"adcode,omitempty" json:"adcode,omitempty"`

	// Chỉ có khi bật position-sensitive
	ProvinceSpan *Span `bson:"province_pos,omitempty" json:"province_pos,omitempty"`
	CitySpan     *Span `bson:"city_pos,omitempty" json:"city_pos,omitempty"`
	DistrictSpan *Span `bson:"district_pos,omitempty" json:"district_pos,omitempty"`
}

// Matched kiểm tra có ít nhất một cấp được match
func (r *AddressRecord) Matched() bool {
	return r.Province != "" || r.City != "" || r.District != ""
}

// Name trả về tên region đã match ở cấp level
func (r *AddressRecord) Name(level Level) string {
	switch level {
	case LevelProvince:
		return r.Province
	case LevelCity:
		return r.City
	case LevelDistrict:
		return r.District
	}
	return ""
}

// Code trả về adcode đã match ở cấp level
func (r *AddressRecord) Code(level Level) string {
	switch level {
	case LevelProvince:
		return r.ProvinceCode
	case LevelCity:
		return r.CityCode
	case LevelDistrict:
		return r.DistrictCode
	}
	return ""
}

// Span trả về span ở cấp level (nil nếu không match hoặc không bật position-sensitive)
func (r *AddressRecord) Span(level Level) *Span {
	switch level {
	case LevelProvince:
		return r.ProvinceSpan
	case LevelCity:
		return r.CitySpan
	case LevelDistrict:
		return r.DistrictSpan
	}
	return nil
}

// Set ghi region và span cho cấp tương ứng
func (r *AddressRecord) Set(region *AdministrativeRegion, span *Span) {
	switch region.Level {
	case LevelProvince:
		r.Province, r.ProvinceCode, r.ProvinceSpan = region.Name, region.Code, span
	case LevelCity:
		r.City, r.CityCode, r.CitySpan = region.Name, region.Code, span
	case LevelDistrict:
		r.District, r.DistrictCode, r.DistrictSpan = region.Name, region.Code, span
	}
}
