// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xingcheng/xingcheng/pkg/planner/builder"
	"github.com/xingcheng/xingcheng/pkg/timeutil"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Planner  PlannerConfig  `yaml:"planner"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// PlannerConfig 行程规划引擎配置
type PlannerConfig struct {
	DayStart         string `yaml:"day_start"`          // HH:MM
	DayEnd           string `yaml:"day_end"`            // HH:MM
	LunchStart       string `yaml:"lunch_start"`        // HH:MM
	LunchLatest      string `yaml:"lunch_latest"`       // HH:MM
	LunchDurationMin int    `yaml:"lunch_duration_min"`
	GapThresholdMin  int    `yaml:"gap_threshold_min"`
	FreeTimeMaxMin   int    `yaml:"free_time_max_min"`
	MaxAttractions   int    `yaml:"max_attractions"`
	Seed             int64  `yaml:"seed"` // 0 表示使用时间种子
}

// BuilderConfig 把规划配置物化为调度引擎配置
// 非法的时钟格式回退到引擎默认值
func (c *PlannerConfig) BuilderConfig() builder.Config {
	cfg := builder.DefaultConfig()
	if v, err := timeutil.ParseClock(c.DayStart); err == nil {
		cfg.DayStartMin = v
	}
	if v, err := timeutil.ParseClock(c.DayEnd); err == nil {
		cfg.DayEndMin = v
	}
	if v, err := timeutil.ParseClock(c.LunchStart); err == nil {
		cfg.LunchStartMin = v
	}
	if v, err := timeutil.ParseClock(c.LunchLatest); err == nil {
		cfg.LunchLatestMin = v
	}
	if c.LunchDurationMin > 0 {
		cfg.LunchDurationMin = c.LunchDurationMin
	}
	if c.GapThresholdMin > 0 {
		cfg.GapThresholdMin = c.GapThresholdMin
	}
	if c.FreeTimeMaxMin > 0 {
		cfg.FreeTimeMaxMin = c.FreeTimeMaxMin
	}
	if c.MaxAttractions > 0 {
		cfg.MaxAttractions = c.MaxAttractions
	}
	return cfg
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "xingcheng"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7036),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "xingcheng"),
			User:            getEnv("DB_USER", "xingcheng"),
			Password:        getEnv("DB_PASSWORD", "xingcheng123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Planner: PlannerConfig{
			DayStart:         getEnv("PLANNER_DAY_START", "09:00"),
			DayEnd:           getEnv("PLANNER_DAY_END", "19:00"),
			LunchStart:       getEnv("PLANNER_LUNCH_START", "12:00"),
			LunchLatest:      getEnv("PLANNER_LUNCH_LATEST", "14:30"),
			LunchDurationMin: getEnvInt("PLANNER_LUNCH_DURATION", 60),
			GapThresholdMin:  getEnvInt("PLANNER_GAP_THRESHOLD", 20),
			FreeTimeMaxMin:   getEnvInt("PLANNER_FREE_TIME_MAX", 40),
			MaxAttractions:   getEnvInt("PLANNER_MAX_ATTRACTIONS", 6),
			Seed:             int64(getEnvInt("PLANNER_SEED", 0)),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
