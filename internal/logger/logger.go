package logger

import (
	"os"
	"strings"

	"github.com/samvad-hq/market-news-desk/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface injected into services. Each call
// logs obj as a single structured field named key.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// std backs the package-level helpers once Init has run.
var std Logger = NopLogger{}

var base *zap.Logger

// Init builds the process logger from cfg: JSON to stdout, ISO8601 "ts",
// caller info, and stack traces from error level up. Unknown levels fall back
// to info.
func Init(cfg *config.Config) (Logger, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		level = zapcore.InfoLevel
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(os.Stdout), level)
	base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.AppName), zap.String("env", cfg.Env))

	std = &zapLogger{l: base}
	return std, nil
}

// Close flushes buffered entries.
func Close() error {
	if base == nil {
		return nil
	}
	return base.Sync()
}

type zapLogger struct {
	l *zap.Logger
}

func (z *zapLogger) InfoObj(msg, key string, obj interface{})  { z.l.Info(msg, zap.Any(key, obj)) }
func (z *zapLogger) DebugObj(msg, key string, obj interface{}) { z.l.Debug(msg, zap.Any(key, obj)) }
func (z *zapLogger) WarnObj(msg, key string, obj interface{})  { z.l.Warn(msg, zap.Any(key, obj)) }
func (z *zapLogger) ErrorObj(msg, key string, obj interface{}) { z.l.Error(msg, zap.Any(key, obj)) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Ensure returns log, or a NopLogger when log is nil.
func Ensure(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}

// Package-level helpers for code that runs before a Logger is injected
// (cmd entry points). They are no-ops until Init.

func InfoObj(msg, key string, obj interface{})  { std.InfoObj(msg, key, obj) }
func WarnObj(msg, key string, obj interface{})  { std.WarnObj(msg, key, obj) }
func ErrorObj(msg, key string, obj interface{}) { std.ErrorObj(msg, key, obj) }
