package models

import "fmt"

// Level cấp hành chính của một region trong gazetteer
type Level int

// Level constants
const (
	LevelProvince Level = 1 // 省 / 直辖市 / 自治区 / 特别行政区
	LevelCity     Level = 2 // 地级市 / 自治州 / 地区 / 盟
	LevelDistrict Level = 3 // 市辖区 / 县 / 县级市
)

// Levels liệt kê các cấp theo thứ tự top-down
var Levels = []Level{LevelProvince, LevelCity, LevelDistrict}

// String trả về tên cấp dùng cho JSON, log và tên cột
func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelCity:
		return "city"
	case LevelDistrict:
		return "district"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// IsValid kiểm tra level có hợp lệ không
func (l Level) IsValid() bool {
	return l >= LevelProvince && l <= LevelDistrict
}

// Parent trả về cấp cha; province không có cấp cha
func (l Level) Parent() (Level, bool) {
	if l <= LevelProvince || !l.IsValid() {
		return 0, false
	}
	return l - 1, true
}

// ParseLevel chuyển tên cấp ("province", "city", "district" hoặc "1".."3") về Level
func ParseLevel(s string) (Level, error) {
	switch s {
	case "province", "1":
		return LevelProvince, nil
	case "city", "2":
		return LevelCity, nil
	case "district", "3":
		return LevelDistrict, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// AdministrativeRegion một đơn vị hành chính trong gazetteer (省/市/区)
type AdministrativeRegion struct {
	Code             string   `bson:"code" json:"code"`                                   // adcode 12 chữ số
	Level            Level    `bson:"level" json:"level"`                                 // 1=province, 2=city, 3=district
	Name             string   `bson:"name" json:"name"`                                   // tên chuẩn, ví dụ 深圳市
	Aliases          []string `bson:"aliases,omitempty" json:"aliases,omitempty"`         // tên gọi khác, tên rút gọn
	ParentCode       string   `bson:"parent_code,omitempty" json:"parent_code,omitempty"` // rỗng với province
	ASCIIName        string   `bson:"ascii_name" json:"ascii_name"`                       // phiên âm ASCII cho search/export
	Latitude         *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude        *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	GazetteerVersion string   `bson:"gazetteer_version" json:"gazetteer_version"`
}

// HasCoordinates kiểm tra region có tọa độ không
func (r *AdministrativeRegion) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Names trả về tên chuẩn cùng toàn bộ aliases
func (r *AdministrativeRegion) Names() []string {
	names := make([]string, 0, 1+len(r.Aliases))
	names = append(names, r.Name)
	return append(names, r.Aliases...)
}

// IsAlias kiểm tra s có phải alias (không phải tên chuẩn) của region
func (r *AdministrativeRegion) IsAlias(s string) bool {
	for _, a := range r.Aliases {
		if a == s {
			return true
		}
	}
	return false
}

func (r *AdministrativeRegion) String() string {
	return fmt.Sprintf("%s(%s)", r.Name, r.Code)
}
