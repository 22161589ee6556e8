// Package logging builds the process logger: a logr.Logger backed by zap.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logr.Logger writing to stderr at the given level
// ("debug", "info", "warn", "error") in "json" or "console" format. The
// returned sync func flushes buffered entries and should be deferred.
func New(level, format string) (logr.Logger, func() error, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return logr.Discard(), nil, err
	}

	var zcfg zap.Config
	switch format {
	case "", "json":
		zcfg = zap.NewProductionConfig()
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return logr.Discard(), nil, fmt.Errorf("unsupported log format %q", format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := zcfg.Build()
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("build zap logger: %w", err)
	}
	return zapr.NewLogger(zl), zl.Sync, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unsupported log level %q", level)
}
