package models

import (
	"time"
)

// AddressCache bản ghi cache kết quả resolve trong MongoDB
type AddressCache struct {
	RawFingerprint   string        `bson:"raw_fingerprint" json:"raw_fingerprint"`     // sha256 của key cache
	RawAddress       string        `bson:"raw_address" json:"raw_address"`             // địa chỉ gốc
	Record           AddressRecord `bson:"record" json:"record"`                       // kết quả resolve
	GazetteerVersion string        `bson:"gazetteer_version" json:"gazetteer_version"` // phiên bản gazetteer dùng khi resolve
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	LastAccessed     time.Time     `bson:"last_accessed" json:"last_accessed"`
	AccessCount      int           `bson:"access_count" json:"access_count"`
}

// NewAddressCache tạo mới một AddressCache
func NewAddressCache(fingerprint string, record AddressRecord, gazetteerVersion string) *AddressCache {
	now := time.Now()
	return &AddressCache{
		RawFingerprint:   fingerprint,
		RawAddress:       record.Raw,
		Record:           record,
		GazetteerVersion: gazetteerVersion,
		CreatedAt:        now,
		LastAccessed:     now,
		AccessCount:      1,
	}
}

// IsValidGazetteerVersion kiểm tra phiên bản gazetteer có khớp không
func (ac *AddressCache) IsValidGazetteerVersion(currentVersion string) bool {
	return ac.GazetteerVersion == currentVersion
}
