package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the JSON logger used by the server and worker binaries.
// Debug mode lowers the level to debug; stack traces are attached to
// error-level entries either way.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	cfg.Encoding = "json"
	cfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	cfg.DisableStacktrace = false

	return cfg.Build()
}

// NewDevelopment builds a console-encoded logger for local runs.
func NewDevelopment(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// Sync flushes buffered entries. Nil loggers are tolerated so deferred
// cleanup does not need a guard.
func Sync(l *zap.Logger) error {
	if l == nil {
		return nil
	}
	return l.Sync()
}
