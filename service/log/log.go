// Package log provides a context-aware zap logger.
package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

var defaultLogger *zap.Logger

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	var err error
	if defaultLogger, err = cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel)); err != nil {
		panic(err)
	}
}

// Logger returns the logger attached to the context, or the default logger
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return defaultLogger
}

// With returns a context whose logger carries the given key/value pair
func With(ctx context.Context, key string, value interface{}) context.Context {
	return context.WithValue(ctx, loggerKey{}, Logger(ctx).With(zap.Any(key, value)))
}

// Fatal logs at fatal level with the default logger, then exits
func Fatal(msg string, fields ...zap.Field) {
	defaultLogger.Fatal(msg, fields...)
}
