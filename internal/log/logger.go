// Package log configures the process-wide zap logger: JSON to a file,
// colored console output, and an optional Sentry hook for errors.
package log

import (
	"os"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the daemon logger. When path is empty only the console
// core is attached. The returned sync function flushes buffered entries
// and should be deferred by the caller.
func NewLogger(path string, debug bool, sentryDSN string) (*zap.Logger, func(), error) {
	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder
	pe.MessageKey = "message"
	pe.TimeKey = "time"

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	consoleCfg := pe
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(colorable.NewColorableStdout()), level),
	}

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(pe), zapcore.AddSync(f), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	if sentryDSN != "" {
		logger = attachSentry(logger, sentryDSN)
	}

	zap.ReplaceGlobals(logger)
	return logger, func() { _ = logger.Sync() }, nil
}

func attachSentry(logger *zap.Logger, dsn string) *zap.Logger {
	cfg := zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
		Tags: map[string]string{
			"component": "marketd",
		},
	}
	core, err := zapsentry.NewCore(cfg, zapsentry.NewSentryClientFromDSN(dsn))
	logger = logger.With(zapsentry.NewScope())
	if err != nil {
		logger.Warn("failed to init sentry core", zap.Error(err))
		return logger
	}
	return zapsentry.AttachCoreToLogger(core, logger)
}
