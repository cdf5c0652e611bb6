// Package logger 提供统一的日志框架
package logger

import (
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

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr
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
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer = os.Stdout
		if cfg.Output == "stderr" {
			output = os.Stderr
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

// OptimizerLogger 优化引擎专用日志器
type OptimizerLogger struct {
	base *zerolog.Logger
}

// NewOptimizerLogger 创建优化引擎日志器
func NewOptimizerLogger() *OptimizerLogger {
	l := Get().With().Str("component", "optimizer").Logger()
	return &OptimizerLogger{base: &l}
}

// StartRun 记录优化开始
func (l *OptimizerLogger) StartRun(stateID, officeID string, routes, rules int) {
	l.base.Info().
		Str("state_id", stateID).
		Str("office_id", officeID).
		Int("routes", routes).
		Int("rules", rules).
		Msg("开始路线优化")
}

// RuleApplied 记录规则应用
func (l *OptimizerLogger) RuleApplied(rule string) {
	l.base.Debug().
		Str("rule", rule).
		Msg("业务规则已应用")
}

// SolverRequest 记录求解器请求结果
func (l *OptimizerLogger) SolverRequest(requestID string, status int, duration time.Duration) {
	l.base.Info().
		Str("request_id", requestID).
		Int("status", status).
		Dur("duration", duration).
		Msg("求解器请求完成")
}

// RunComplete 记录优化完成
func (l *OptimizerLogger) RunComplete(stateID string, duration time.Duration) {
	l.base.Info().
		Str("state_id", stateID).
		Dur("duration", duration).
		Msg("路线优化完成")
}

// RouteViolation 记录路线校验违规
func (l *OptimizerLogger) RouteViolation(routeID, violation string) {
	l.base.Warn().
		Str("route_id", routeID).
		Str("violation", violation).
		Msg("路线校验未通过")
}
