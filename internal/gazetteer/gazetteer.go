package gazetteer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cn-address-resolver/app/models"
	"github.com/cn-address-resolver/internal/normalizer"
	"go.uber.org/zap"
)

var (
	// ErrLoadFailure dataset hỏng hoặc không đọc được; lỗi này là fatal khi khởi động
	ErrLoadFailure = errors.New("gazetteer load failure")
	// ErrNotFound không có region với code đã cho
	ErrNotFound = errors.New("region not found")
	// ErrNoCoordinates region tồn tại nhưng không có tọa độ
	ErrNoCoordinates = errors.New("region has no coordinates")
)

// Hậu tố hành chính bị bỏ khi sinh tên rút gọn, dài trước ngắn sau
var adminSuffixes = []string{
	"维吾尔自治区", "壮族自治区", "回族自治区", "特别行政区",
	"自治区", "自治州", "地区", "省", "市", "盟",
}

// Option tùy chọn khi dựng Gazetteer
type Option func(*options)

type options struct {
	logger           *zap.Logger
	deriveShortNames bool
}

// WithLogger gắn logger, mặc định zap.NewNop()
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDerivedShortNames bật/tắt sinh tên rút gọn cho province và city (mặc định bật)
func WithDerivedShortNames(enabled bool) Option {
	return func(o *options) {
		o.deriveShortNames = enabled
	}
}

// Gazetteer chỉ mục bất biến các đơn vị hành chính 省/市/区.
// Dựng một lần lúc khởi động; mọi method chỉ đọc nên an toàn khi dùng đồng thời.
// Các *models.AdministrativeRegion trả về dùng chung, caller không được sửa.
type Gazetteer struct {
	version  string
	regions  []*models.AdministrativeRegion
	byCode   map[string]*models.AdministrativeRegion
	children map[string][]*models.AdministrativeRegion // "" -> provinces
	byLevel  map[models.Level][]*models.AdministrativeRegion
	ascii    map[string][]string // code -> tên ASCII compact của name và aliases
}

// New kiểm tra dataset và dựng Gazetteer. Mọi lỗi dữ liệu bọc ErrLoadFailure.
func New(ds *Dataset, opts ...Option) (*Gazetteer, error) {
	o := options{logger: zap.NewNop(), deriveShortNames: true}
	for _, opt := range opts {
		opt(&o)
	}
	if ds == nil || len(ds.Provinces) == 0 {
		return nil, fmt.Errorf("%w: dataset has no provinces", ErrLoadFailure)
	}

	b := &builder{
		byCode:   make(map[string]*models.AdministrativeRegion),
		siblings: make(map[string]map[string]string),
	}
	for _, p := range ds.Provinces {
		if err := b.add(p, models.LevelProvince, nil); err != nil {
			return nil, err
		}
	}
	if o.deriveShortNames {
		b.deriveShortNames(o.logger)
	}

	g := &Gazetteer{
		version:  ds.Version,
		regions:  b.regions,
		byCode:   b.byCode,
		children: make(map[string][]*models.AdministrativeRegion),
		byLevel:  make(map[models.Level][]*models.AdministrativeRegion),
		ascii:    make(map[string][]string, len(b.regions)),
	}
	if g.version == "" {
		g.version = fingerprint(b.regions)
	}

	slices.SortFunc(g.regions, func(a, b *models.AdministrativeRegion) int {
		return strings.Compare(a.Code, b.Code)
	})
	for _, r := range g.regions {
		r.GazetteerVersion = g.version
		g.children[r.ParentCode] = append(g.children[r.ParentCode], r)
		g.byLevel[r.Level] = append(g.byLevel[r.Level], r)
		for _, name := range r.Names() {
			g.ascii[r.Code] = append(g.ascii[r.Code], normalizer.CompactASCII(name))
		}
	}

	o.logger.Info("Gazetteer loaded",
		zap.String("version", g.version),
		zap.Int("provinces", len(g.byLevel[models.LevelProvince])),
		zap.Int("cities", len(g.byLevel[models.LevelCity])),
		zap.Int("districts", len(g.byLevel[models.LevelDistrict])))

	return g, nil
}

// Version phiên bản dataset
func (g *Gazetteer) Version() string { return g.version }

// Len tổng số region
func (g *Gazetteer) Len() int { return len(g.regions) }

// Counts số region theo cấp
func (g *Gazetteer) Counts() map[models.Level]int {
	counts := make(map[models.Level]int, len(models.Levels))
	for _, level := range models.Levels {
		counts[level] = len(g.byLevel[level])
	}
	return counts
}

// Regions toàn bộ region, sắp theo code
func (g *Gazetteer) Regions() []*models.AdministrativeRegion {
	return slices.Clip(g.regions)
}

// LookupByCode tìm region theo code đầy đủ 12 chữ số
func (g *Gazetteer) LookupByCode(code string) (*models.AdministrativeRegion, error) {
	if r, ok := g.byCode[code]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
}

// LookupPartial chuẩn hóa code rút gọn ("44", "4403", "440305") rồi tìm region.
// Trả về normalizer.ErrInvalidCodeFormat nếu code sai định dạng.
func (g *Gazetteer) LookupPartial(code string) (*models.AdministrativeRegion, error) {
	full, _, err := normalizer.NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	return g.LookupByCode(full)
}

// ChildrenOf các region ngay dưới parentCode; parentCode rỗng trả về toàn bộ province
func (g *Gazetteer) ChildrenOf(parentCode string) []*models.AdministrativeRegion {
	return slices.Clip(g.children[parentCode])
}

// CandidatesAtLevel toàn bộ region ở một cấp
func (g *Gazetteer) CandidatesAtLevel(level models.Level) []*models.AdministrativeRegion {
	return slices.Clip(g.byLevel[level])
}

// Ancestors chuỗi region cha của code, từ province xuống, không gồm chính nó
func (g *Gazetteer) Ancestors(code string) []*models.AdministrativeRegion {
	r, ok := g.byCode[code]
	if !ok {
		return nil
	}
	var chain []*models.AdministrativeRegion
	for r.ParentCode != "" {
		parent, ok := g.byCode[r.ParentCode]
		if !ok {
			break
		}
		chain = append(chain, parent)
		r = parent
	}
	slices.Reverse(chain)
	return chain
}

// IsWithin kiểm tra region nằm dưới (không tính chính nó) region có code ancestorCode
func (g *Gazetteer) IsWithin(region *models.AdministrativeRegion, ancestorCode string) bool {
	for region.ParentCode != "" {
		if region.ParentCode == ancestorCode {
			return true
		}
		parent, ok := g.byCode[region.ParentCode]
		if !ok {
			return false
		}
		region = parent
	}
	return false
}

// Location tọa độ của một region
type Location struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locate trả về tọa độ của region theo code (chấp nhận code rút gọn)
func (g *Gazetteer) Locate(code string) (Location, error) {
	r, err := g.LookupPartial(code)
	if err != nil {
		return Location{}, err
	}
	if !r.HasCoordinates() {
		return Location{}, fmt.Errorf("%w: %s", ErrNoCoordinates, r.Code)
	}
	return Location{Code: r.Code, Name: r.Name, Latitude: *r.Latitude, Longitude: *r.Longitude}, nil
}

// builder gom region trong lúc duyệt dataset
type builder struct {
	regions []*models.AdministrativeRegion
	byCode  map[string]*models.AdministrativeRegion
	// parent code -> folded name -> code của region đang giữ tên đó
	siblings map[string]map[string]string
}

func (b *builder) add(e Entry, level models.Level, parent *models.AdministrativeRegion) error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return fmt.Errorf("%w: region %q has no name", ErrLoadFailure, e.Code)
	}
	code, codeLevel, err := normalizer.NormalizeCode(e.Code)
	if err != nil {
		return fmt.Errorf("%w: region %s: %v", ErrLoadFailure, name, err)
	}
	if codeLevel != level {
		return fmt.Errorf("%w: region %s code %s denotes a %s but is nested as a %s",
			ErrLoadFailure, name, code, codeLevel, level)
	}
	if _, dup := b.byCode[code]; dup {
		return fmt.Errorf("%w: duplicate code %s", ErrLoadFailure, code)
	}

	region := &models.AdministrativeRegion{
		Code:      code,
		Level:     level,
		Name:      name,
		ASCIIName: normalizer.ASCIIName(name),
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
	}
	if parent != nil {
		if !normalizer.IsAncestorCode(parent.Code, code) {
			return fmt.Errorf("%w: region %s code %s is outside parent %s", ErrLoadFailure, name, code, parent.Code)
		}
		region.ParentCode = parent.Code
	}

	if err := b.claim(region, name); err != nil {
		return err
	}
	for _, alias := range e.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" || alias == name || region.IsAlias(alias) {
			continue
		}
		if err := b.claim(region, alias); err != nil {
			return err
		}
		region.Aliases = append(region.Aliases, alias)
	}

	b.byCode[code] = region
	b.regions = append(b.regions, region)

	switch level {
	case models.LevelProvince:
		if len(e.Districts) > 0 {
			return fmt.Errorf("%w: province %s lists districts directly", ErrLoadFailure, name)
		}
		for _, c := range e.Cities {
			if err := b.add(c, models.LevelCity, region); err != nil {
				return err
			}
		}
	case models.LevelCity:
		if len(e.Cities) > 0 {
			return fmt.Errorf("%w: city %s lists cities", ErrLoadFailure, name)
		}
		for _, d := range e.Districts {
			if err := b.add(d, models.LevelDistrict, region); err != nil {
				return err
			}
		}
	default:
		if len(e.Cities) > 0 || len(e.Districts) > 0 {
			return fmt.Errorf("%w: district %s has children", ErrLoadFailure, name)
		}
	}
	return nil
}

// claim đăng ký tên cho region; tên phải duy nhất giữa các region cùng cha
func (b *builder) claim(region *models.AdministrativeRegion, name string) error {
	names := b.siblings[region.ParentCode]
	if names == nil {
		names = make(map[string]string)
		b.siblings[region.ParentCode] = names
	}
	key := normalizer.FoldString(name)
	if owner, taken := names[key]; taken && owner != region.Code {
		return fmt.Errorf("%w: name %q used by both %s and %s", ErrLoadFailure, name, owner, region.Code)
	}
	names[key] = region.Code
	return nil
}

// deriveShortNames thêm alias rút gọn (广东省 -> 广东) cho province và city.
// Alias bị bỏ nếu ngắn hơn 2 ký tự hoặc trùng tên của region cùng cha.
func (b *builder) deriveShortNames(logger *zap.Logger) {
	for _, r := range b.regions {
		if r.Level == models.LevelDistrict {
			continue
		}
		short := ShortName(r.Name)
		if short == r.Name || utf8.RuneCountInString(short) < 2 || r.IsAlias(short) {
			continue
		}
		key := normalizer.FoldString(short)
		if owner, taken := b.siblings[r.ParentCode][key]; taken && owner != r.Code {
			logger.Debug("Dropped derived short name",
				zap.String("region", r.Code),
				zap.String("short_name", short),
				zap.String("owner", owner))
			continue
		}
		b.siblings[r.ParentCode][key] = r.Code
		r.Aliases = append(r.Aliases, short)
	}
}

// ShortName bỏ hậu tố hành chính khỏi tên (广西壮族自治区 -> 广西)
func ShortName(name string) string {
	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

func fingerprint(regions []*models.AdministrativeRegion) string {
	h := sha256.New()
	for _, r := range regions {
		fmt.Fprintf(h, "%s\t%s\t%s\n", r.Code, r.Name, strings.Join(r.Aliases, ","))
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))[:12]
}
