// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	// 添加行程ID
	if tripID, ok := ctx.Value("trip_id").(string); ok {
		l = l.With().Str("trip_id", tripID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// PlannerLogger 行程规划引擎专用日志器
type PlannerLogger struct {
	base *zerolog.Logger
}

// NewPlannerLogger 创建规划引擎日志器
func NewPlannerLogger() *PlannerLogger {
	l := Get().With().Str("component", "planner").Logger()
	return &PlannerLogger{base: &l}
}

// StartPlan 记录单日规划开始
func (l *PlannerLogger) StartPlan(date string, candidates int) {
	l.base.Info().
		Str("date", date).
		Int("candidates", candidates).
		Msg("开始生成单日行程")
}

// PlanComplete 记录规划完成
func (l *PlannerLogger) PlanComplete(date string, attractions int, duration time.Duration) {
	l.base.Info().
		Str("date", date).
		Int("attractions", attractions).
		Dur("duration", duration).
		Msg("行程生成完成")
}

// POIPlaced 记录景点被选入行程
func (l *PlannerLogger) POIPlaced(date, name string, startMin int, score float64) {
	l.base.Debug().
		Str("date", date).
		Str("poi", name).
		Int("start_min", startMin).
		Float64("score", score).
		Msg("景点已排入")
}

// FilterExcluded 记录候选被硬性规则排除
func (l *PlannerLogger) FilterExcluded(poi, rule string) {
	l.base.Debug().
		Str("poi", poi).
		Str("rule", rule).
		Msg("候选被排除")
}

// GapFilled 记录空档填补
func (l *PlannerLogger) GapFilled(date string, kind string, minutes int) {
	l.base.Debug().
		Str("date", date).
		Str("kind", kind).
		Int("minutes", minutes).
		Msg("空档已填补")
}

// HealPass 记录时间线修复轮次
func (l *PlannerLogger) HealPass(pass, overlaps int) {
	l.base.Debug().
		Int("pass", pass).
		Int("overlaps", overlaps).
		Msg("时间线修复")
}

// ResidualOverlaps 记录修复后仍存在的重叠
func (l *PlannerLogger) ResidualOverlaps(count int) {
	l.base.Warn().
		Int("overlaps", count).
		Msg("修复轮次耗尽，仍存在时间重叠")
}

// EditApplied 记录编辑操作
func (l *PlannerLogger) EditApplied(op string, itemID string) {
	l.base.Info().
		Str("op", op).
		Str("item_id", itemID).
		Msg("行程编辑已应用")
}
