package requests

import "github.com/cn-address-resolver/internal/resolver"

// ResolveOptions tùy chọn resolve; trường nil dùng giá trị cấu hình mặc định
type ResolveOptions struct {
	PositionSensitive *bool `json:"position_sensitive,omitempty"`
	FillParents       *bool `json:"fill_parents,omitempty"`
}

// Apply ghép tùy chọn của request lên defaults
func (o ResolveOptions) Apply(defaults resolver.Options) resolver.Options {
	if o.PositionSensitive != nil {
		defaults.PositionSensitive = *o.PositionSensitive
	}
	if o.FillParents != nil {
		defaults.FillParents = *o.FillParents
	}
	return defaults
}

// ResolveAddressRequest request resolve đồng bộ: một địa chỉ (address) hoặc một dãy (addresses)
type ResolveAddressRequest struct {
	Address   *string        `json:"address,omitempty"`
	Addresses []string       `json:"addresses,omitempty"`
	Options   ResolveOptions `json:"options,omitempty"`
}

// BatchJobRequest request tạo job resolve chạy nền
type BatchJobRequest struct {
	Addresses []string       `json:"addresses" binding:"required,min=1"`
	Options   ResolveOptions `json:"options,omitempty"`
}

// InvalidateCacheRequest request invalidate cache
type InvalidateCacheRequest struct {
	All bool `json:"all,omitempty"` // true: xóa toàn bộ; false: chỉ phiên bản gazetteer cũ
}
