package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Options configures the service logger.
type Options struct {
	Service string
	Version string
	Env     string
	// Format is "json" or "text". Empty picks JSON in Kubernetes, prod and dev.
	Format string
	// Level is debug, info, warn or error. Empty means info for JSON and debug for text.
	Level string
}

// New builds the service logger. Every record carries service, version and
// environment, plus trace_id/span_id whenever the context holds a valid span.
func New(opts Options) (*slog.Logger, error) {
	return newWithWriter(os.Stdout, opts)
}

func newWithWriter(w io.Writer, opts Options) (*slog.Logger, error) {
	useJSON, err := jsonFormat(opts)
	if err != nil {
		return nil, err
	}

	level := slog.LevelDebug
	if useJSON {
		level = slog.LevelInfo
	}
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	} else {
		handler = newColorTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(newTraceContextHandler(handler)).With(
		slog.String("service", opts.Service),
		slog.String("version", opts.Version),
		slog.String("environment", opts.Env),
	), nil
}

func jsonFormat(opts Options) (bool, error) {
	switch strings.ToLower(opts.Format) {
	case "json":
		return true, nil
	case "text":
		return false, nil
	case "":
		_, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST")
		return inK8s || opts.Env == "prod" || opts.Env == "dev", nil
	default:
		return false, fmt.Errorf("unknown log format %q", opts.Format)
	}
}

// colorTextHandler paints ERROR messages red
type colorTextHandler struct {
	handler slog.Handler
}

func newColorTextHandler(w io.Writer, opts *slog.HandlerOptions) *colorTextHandler {
	return &colorTextHandler{
		handler: slog.NewTextHandler(w, opts),
	}
}

func (h *colorTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *colorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < slog.LevelError {
		return h.handler.Handle(ctx, r)
	}

	colored := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("\x1b[31m%s\x1b[0m", r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		colored.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, colored)
}

func (h *colorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *colorTextHandler) WithGroup(name string) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithGroup(name)}
}

type traceContextHandler struct {
	handler slog.Handler
}

func newTraceContextHandler(h slog.Handler) *traceContextHandler {
	return &traceContextHandler{handler: h}
}

func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithGroup(name)}
}
