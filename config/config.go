package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	BaseURL      string          `mapstructure:"base_url"`
	CORS         CORSConfig      `mapstructure:"cors"`
	MaxBodyBytes int64           `mapstructure:"max_body_bytes"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 写接口限流（依赖 Redis；Redis 不可用时不限流）
type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// LockTTLSeconds 单个节目单指派锁的过期时间
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig 指派引擎参数
type EngineConfig struct {
	RelaxedWindowDays   int            `mapstructure:"relaxed_window_days"`
	MaxFallbackAttempts int            `mapstructure:"max_fallback_attempts"`
	EnforceCooldown     bool           `mapstructure:"enforce_cooldown"`
	DefaultCooldownDays int            `mapstructure:"default_cooldown_days"`
	CooldownDays        map[string]int `mapstructure:"cooldown_days"` // 覆盖内置冷却期，键为节目类型或助手标签
	HistoryWindowDays   int            `mapstructure:"history_window_days"` // 从数据库加载多少天的历史
}

// ExportConfig 导出配置
type ExportConfig struct {
	Timezone           string `mapstructure:"timezone"`
	CalendarName       string `mapstructure:"calendar_name"`
	PartDefaultMinutes int    `mapstructure:"part_default_minutes"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.rate_limit.requests", 60)
	v.SetDefault("server.rate_limit.window_seconds", 60)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "meeting_designations")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Sao_Paulo")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl_seconds", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("engine.relaxed_window_days", 7)
	v.SetDefault("engine.max_fallback_attempts", 3)
	v.SetDefault("engine.enforce_cooldown", true)
	v.SetDefault("engine.default_cooldown_days", 28)
	v.SetDefault("engine.history_window_days", 180)

	v.SetDefault("export.timezone", "America/Sao_Paulo")
	v.SetDefault("export.calendar_name", "Designações")
	v.SetDefault("export.part_default_minutes", 5)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("DESIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Engine.MaxFallbackAttempts < 1 || c.Engine.MaxFallbackAttempts > 3 {
		return fmt.Errorf("配置校验失败: engine.max_fallback_attempts 必须在 1-3 之间")
	}
	if c.Engine.RelaxedWindowDays <= 0 {
		return fmt.Errorf("配置校验失败: engine.relaxed_window_days 必须大于 0")
	}
	if c.Engine.DefaultCooldownDays <= 0 {
		return fmt.Errorf("配置校验失败: engine.default_cooldown_days 必须大于 0")
	}
	for tag, days := range c.Engine.CooldownDays {
		if days < 0 {
			return fmt.Errorf("配置校验失败: engine.cooldown_days.%s 不能为负数", tag)
		}
	}
	if c.Engine.HistoryWindowDays < c.Engine.DefaultCooldownDays {
		return fmt.Errorf("配置校验失败: engine.history_window_days 不能小于 default_cooldown_days")
	}
	return nil
}
