package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 勾選狀態儲存後端
const (
	CheckedBackendMemory = "memory"
	CheckedBackendRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Checked      CheckedConfig      `mapstructure:"checked"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Database     DatabaseConfig     `mapstructure:"database"`
	RecipeSource RecipeSourceConfig `mapstructure:"recipe_source"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	LogLevel     string             `mapstructure:"log_level"`
	LogFile      string             `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`
}

// CheckedConfig 勾選狀態儲存設定
type CheckedConfig struct {
	Backend         string        `mapstructure:"backend"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig PostgreSQL 設定
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RecipeSourceConfig 食譜來源服務設定
type RecipeSourceConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時直接使用環境變數
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("checked.backend", "CHECKED_BACKEND")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.enabled", "DATABASE_ENABLED")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("recipe_source.enabled", "RECIPE_SOURCE_ENABLED")
	_ = v.BindEnv("recipe_source.base_url", "RECIPE_SOURCE_URL")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_file", "LOG_FILE")

	// 設定設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 讀取設定檔
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration", "checked_backend:", v.GetString("checked.backend"),
		"database_enabled:", v.GetBool("database.enabled"),
		"database_url:", maskDSN(v.GetString("database.url")))

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskDSN 遮罩連線字串，只顯示前後各 4 個字符
func maskDSN(dsn string) string {
	if len(dsn) <= 8 {
		return "****"
	}
	return dsn[:4] + "..." + dsn[len(dsn)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "grocery-aggregator")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_size", 2<<20) // 2MB

	// 勾選狀態
	v.SetDefault("checked.backend", CheckedBackendMemory)
	v.SetDefault("checked.ttl", "720h")
	v.SetDefault("checked.max_size", 10000)
	v.SetDefault("checked.cleanup_interval", "10m")

	// Redis
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 資料庫
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)

	// 食譜來源
	v.SetDefault("recipe_source.enabled", false)
	v.SetDefault("recipe_source.base_url", "http://localhost:8081/api/v1")
	v.SetDefault("recipe_source.timeout", "10s")
	v.SetDefault("recipe_source.retries", 2)
	v.SetDefault("recipe_source.max_concurrency", 4)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout")
	}
	if config.Server.MaxBodySize <= 0 {
		return fmt.Errorf("invalid max body size")
	}

	// 驗證勾選狀態設定
	switch config.Checked.Backend {
	case CheckedBackendMemory:
		if config.Checked.MaxSize <= 0 {
			return fmt.Errorf("invalid checked store max size")
		}
		if config.Checked.CleanupInterval <= 0 {
			return fmt.Errorf("invalid checked store cleanup interval")
		}
	case CheckedBackendRedis:
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for redis backend")
		}
	default:
		return fmt.Errorf("unknown checked backend %q", config.Checked.Backend)
	}
	if config.Checked.TTL <= 0 {
		return fmt.Errorf("invalid checked store ttl")
	}

	// 驗證資料庫設定
	if config.Database.Enabled && config.Database.URL == "" {
		return fmt.Errorf("database url is required when database is enabled")
	}

	// 驗證食譜來源設定
	if config.RecipeSource.Enabled {
		if config.RecipeSource.BaseURL == "" {
			return fmt.Errorf("recipe source base url is required")
		}
		if config.RecipeSource.MaxConcurrency <= 0 {
			return fmt.Errorf("invalid recipe source max concurrency")
		}
	}

	// 驗證限流設定
	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
