package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix tiền tố biến môi trường, ví dụ RESOLVER_APP_PORT
const EnvPrefix = "RESOLVER"

// Config cấu hình toàn bộ service
type Config struct {
	App         AppConfig         `mapstructure:"app" yaml:"app" json:"app"`
	Log         LogConfig         `mapstructure:"log" yaml:"log" json:"log"`
	Gazetteer   GazetteerConfig   `mapstructure:"gazetteer" yaml:"gazetteer" json:"gazetteer"`
	Resolver    ResolverConfig    `mapstructure:"resolver" yaml:"resolver" json:"resolver"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache" json:"cache"`
	Meilisearch MeilisearchConfig `mapstructure:"meilisearch" yaml:"meilisearch" json:"meilisearch"`
	Batch       BatchConfig       `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// AppConfig thông tin service
type AppConfig struct {
	Env     string `mapstructure:"env" yaml:"env" json:"env"` // development, production
	Port    string `mapstructure:"port" yaml:"port" json:"port"`
	Version string `mapstructure:"version" yaml:"version" json:"version"`
}

// LogConfig cấu hình zap
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"` // debug, info, warn, error
}

// GazetteerConfig nguồn dataset
type GazetteerConfig struct {
	Path             string `mapstructure:"path" yaml:"path" json:"path"` // rỗng = dataset nhúng
	DeriveShortNames bool   `mapstructure:"derive_short_names" yaml:"derive_short_names" json:"derive_short_names"`
}

// ResolverConfig tùy chọn resolve và song song hóa
type ResolverConfig struct {
	PositionSensitive bool `mapstructure:"position_sensitive" yaml:"position_sensitive" json:"position_sensitive"`
	FillParents       bool `mapstructure:"fill_parents" yaml:"fill_parents" json:"fill_parents"`
	Workers           int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ChunkSize         int  `mapstructure:"chunk_size" yaml:"chunk_size" json:"chunk_size"`
}

// CacheConfig cấu hình cache kết quả resolve
type CacheConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend" json:"backend"` // memory, redis, mongo, hybrid, none
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
	L1Size        int           `mapstructure:"l1_size" yaml:"l1_size" json:"l1_size"`
	RedisURL      string        `mapstructure:"redis_url" yaml:"redis_url" json:"-"`
	MongoURL      string        `mapstructure:"mongo_url" yaml:"mongo_url" json:"-"`
	MongoDatabase string        `mapstructure:"mongo_database" yaml:"mongo_database" json:"mongo_database"`
}

// MeilisearchConfig cấu hình index tìm kiếm region
type MeilisearchConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	URL     string        `mapstructure:"url" yaml:"url" json:"url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key" json:"-"`
	Index   string        `mapstructure:"index" yaml:"index" json:"index"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// BatchConfig giới hạn cho job và bảng
type BatchConfig struct {
	MaxAddresses int           `mapstructure:"max_addresses" yaml:"max_addresses" json:"max_addresses"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"` // giới hạn body request, đọc quá sẽ trả 413
	JobTTL       time.Duration `mapstructure:"job_ttl" yaml:"job_ttl" json:"job_ttl"`
}

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheMongo  = "mongo"
	CacheHybrid = "hybrid"
	CacheNone   = "none"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("log.level", "info")

	v.SetDefault("gazetteer.path", "")
	v.SetDefault("gazetteer.derive_short_names", true)

	v.SetDefault("resolver.position_sensitive", false)
	v.SetDefault("resolver.fill_parents", false)
	v.SetDefault("resolver.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("resolver.chunk_size", 2048)

	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.l1_size", 10000)
	v.SetDefault("cache.redis_url", "redis://localhost:6379")
	v.SetDefault("cache.mongo_url", "")
	v.SetDefault("cache.mongo_database", "address_resolver")

	v.SetDefault("meilisearch.enabled", false)
	v.SetDefault("meilisearch.url", "http://localhost:7700")
	v.SetDefault("meilisearch.api_key", "")
	v.SetDefault("meilisearch.index", "admin_regions")
	v.SetDefault("meilisearch.timeout", 30*time.Second)

	v.SetDefault("batch.max_addresses", 20000)
	v.SetDefault("batch.max_body_bytes", 32<<20)
	v.SetDefault("batch.job_ttl", time.Hour)
}

// New tạo viper instance đã có defaults và env binding; dùng khi cần bind thêm flag
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load đọc .env (nếu có), file cấu hình path (nếu có) và biến môi trường.
// path rỗng thì tìm config/resolver.yaml hoặc ./resolver.yaml.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")
	return LoadWith(New(), path)
}

// LoadWith như Load nhưng dùng viper instance có sẵn (đã bind flag)
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("resolver")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate kiểm tra giá trị cấu hình
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheMongo, CacheHybrid, CacheNone:
	default:
		return fmt.Errorf("invalid cache.backend %q", c.Cache.Backend)
	}
	if c.Resolver.Workers < 0 || c.Resolver.ChunkSize < 0 {
		return fmt.Errorf("resolver.workers and resolver.chunk_size must not be negative")
	}
	if c.Batch.MaxAddresses <= 0 {
		return fmt.Errorf("batch.max_addresses must be positive")
	}
	if c.Batch.MaxBodyBytes <= 0 {
		return fmt.Errorf("batch.max_body_bytes must be positive")
	}
	return nil
}

// IsProduction kiểm tra môi trường production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Addr địa chỉ listen của HTTP server
func (c *Config) Addr() string {
	return ":" + c.App.Port
}
