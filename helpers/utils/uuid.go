package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateUUID tạo UUID v4 dùng làm job ID
func GenerateUUID() string {
	return uuid.NewString()
}

// IsUUID kiểm tra chuỗi có phải UUID hợp lệ
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Fingerprint sinh sha256 hex ổn định cho các phần của cache key.
// Các phần được phân tách bằng byte 0 để ("ab","c") khác ("a","bc").
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
