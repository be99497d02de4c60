package logger

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// ContextWithLogger returns a copy of ctx that carries l. A nil l is ignored.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the request-scoped logger, or the process-wide zap.L()
// when ctx carries none. zap.L() is a no-op until zap.ReplaceGlobals is called.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}

// With derives a context whose logger has fields appended.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, loggerKey{}, FromContext(ctx).With(fields...))
}
