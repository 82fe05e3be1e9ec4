package logger

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

// Init builds the process logger. An empty filename logs to stderr.
func Init(filename string, debug bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if filename != "" {
		cfg.OutputPaths = []string{filename}
		cfg.ErrorOutputPaths = []string{filename}
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	Set(l)
	return nil
}

// Set replaces the process logger
func Set(l *zap.Logger) {
	logger.Store(l)
}

// L returns the process logger, or a no-op logger before Init.
func L() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

func Log(format string, v ...interface{}) {
	L().Sugar().Infof(format, v...)
}

// Sync flushes buffered log entries
func Sync() {
	_ = L().Sync()
}
