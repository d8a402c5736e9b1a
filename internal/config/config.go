package config

import (
	"fmt"
	"strings"

	"github.com/goobits/storefront/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Commerce  CommerceConfig  `mapstructure:"commerce"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	I18n      I18nConfig      `mapstructure:"i18n"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// CommerceConfig 商城后端接口配置
type CommerceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	PublishableKey string `mapstructure:"publishable_key"`
	TimeoutMS      int    `mapstructure:"timeout_ms"`
	DefaultRegion  string `mapstructure:"default_region"`
}

// ProcessorConfig 支付处理器配置
type ProcessorConfig struct {
	PublishableKey string `mapstructure:"publishable_key"`
	SecretKey      string `mapstructure:"secret_key"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	TimeoutMS      int    `mapstructure:"timeout_ms"`
}

// StoragePoolConfig 持久层连接池配置
type StoragePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// StorageConfig 持久层（购物车快照）配置
type StorageConfig struct {
	Driver string            `mapstructure:"driver"` // 持久层驱动（sqlite/postgres）
	DSN    string            `mapstructure:"dsn"`    // 连接串
	Pool   StoragePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置（会话层存储与同步通知）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// JWTConfig 会话令牌配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthRateLimit AuthRateLimitConfig `mapstructure:"auth_rate_limit"`
}

// AuthRateLimitConfig 登录限流配置
type AuthRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// I18nConfig 多语言配置
type I18nConfig struct {
	DefaultLocale string                       `mapstructure:"default_locale"`
	Overrides     map[string]map[string]string `mapstructure:"overrides"` // locale -> key -> message
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "storefront.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("commerce.base_url", "http://127.0.0.1:9000")
	viper.SetDefault("commerce.publishable_key", "")
	viper.SetDefault("commerce.timeout_ms", 12000)
	viper.SetDefault("commerce.default_region", "")
	viper.SetDefault("processor.publishable_key", "")
	viper.SetDefault("processor.secret_key", "")
	viper.SetDefault("processor.api_base_url", "https://api.stripe.com")
	viper.SetDefault("processor.timeout_ms", 12000)
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.dsn", "./db/storefront.db")
	viper.SetDefault("storage.pool.max_open_conns", 1)
	viper.SetDefault("storage.pool.max_idle_conns", 1)
	viper.SetDefault("storage.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("storage.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "sf")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 24)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.auth_rate_limit.window_seconds", 300)
	viper.SetDefault("security.auth_rate_limit.max_attempts", 5)
	viper.SetDefault("security.auth_rate_limit.block_seconds", 900)
	viper.SetDefault("i18n.default_locale", "en")

	// 环境变量支持
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	cfg.normalize()
	return &cfg
}

func (c *Config) normalize() {
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	c.Commerce.BaseURL = strings.TrimRight(strings.TrimSpace(c.Commerce.BaseURL), "/")
	c.Processor.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Processor.APIBaseURL), "/")
	c.I18n.DefaultLocale = strings.TrimSpace(c.I18n.DefaultLocale)
	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = "en"
	}
}
