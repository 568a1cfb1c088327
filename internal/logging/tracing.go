package logging

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// tracingLogHandler adds the Google Cloud Logging trace fields to each
// record so log lines are grouped with the active trace in the console.
// https://docs.cloud.google.com/logging/docs/agent/logging/configuration#special-fields
//
// NOTE: Requires the use of the *Context slog methods to get the tracing info
type tracingLogHandler struct {
	base        slog.Handler
	tracePrefix string
}

// NewGoogleCloudTracingLogHandler wraps baseHandler for the given GCP project.
func NewGoogleCloudTracingLogHandler(baseHandler slog.Handler, project string) *tracingLogHandler {
	return &tracingLogHandler{
		base:        baseHandler,
		tracePrefix: fmt.Sprintf("projects/%s/traces/", project),
	}
}

func (h *tracingLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *tracingLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("logging.googleapis.com/trace", h.tracePrefix+sc.TraceID().String()),
			slog.String("logging.googleapis.com/spanId", sc.SpanID().String()),
			slog.Bool("logging.googleapis.com/trace_sampled", sc.TraceFlags().IsSampled()),
		)
	}
	return h.base.Handle(ctx, r)
}

func (h *tracingLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &tracingLogHandler{base: h.base.WithAttrs(attrs), tracePrefix: h.tracePrefix}
}

func (h *tracingLogHandler) WithGroup(name string) slog.Handler {
	return &tracingLogHandler{base: h.base.WithGroup(name), tracePrefix: h.tracePrefix}
}

var _ slog.Handler = (*tracingLogHandler)(nil)
