package monitoring

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = newLogger(zapcore.InfoLevel, "console")

// Logf is the package-level diagnostic logger. It writes through zap at info
// level but may be replaced by SetLogger. Tests or production code can
// redirect or mute it.
var Logf func(format string, v ...interface{}) = base.Sugar().Infof

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Logger returns the zap logger behind Logf for callers that log with fields.
func Logger() *zap.Logger {
	return base
}

// Init rebuilds the zap logger with the given level ("debug", "info", ...)
// and encoding ("console" or "json") and points Logf at it.
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	format = strings.ToLower(format)
	if format != "console" && format != "json" {
		return fmt.Errorf("invalid log format %q: must be console or json", format)
	}
	_ = base.Sync()
	base = newLogger(lvl, format)
	Logf = base.Sugar().Infof
	return nil
}

func newLogger(level zapcore.Level, encoding string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = encoding
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	if encoding == "console" {
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
