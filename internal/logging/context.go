package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerContextKey struct{}

// FromContext returns the request logger stored in ctx. Code paths that
// never went through the logging middleware get a bare JSON logger marked
// as the fallback so the gap is visible in the logs.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("logger", "fallback"))
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// AddMetaToContext attaches attrs to the context logger so they show up on
// every subsequent log line for the request.
func AddMetaToContext(ctx context.Context, args ...slog.Attr) context.Context {
	anyArgs := make([]any, len(args))
	for i, arg := range args {
		anyArgs[i] = arg
	}
	return AddToContext(ctx, FromContext(ctx).With(anyArgs...))
}
