package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

var (
	instance *slog.Logger
	once     sync.Once
	level    = new(slog.LevelVar)
)

// Instance is the process-wide JSON logger on stdout.
func Instance() *slog.Logger {
	once.Do(func() {
		instance = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))
	})

	return instance
}

// SetLevel switches the minimum level of the shared logger at runtime.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// Debug stays local; it is never shipped to the remote sink.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	Instance().LogAttrs(ctx, slog.LevelDebug, msg, enrich(ctx, attrs...)...)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	write(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	write(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	write(ctx, slog.LevelError, msg, attrs)
}

func write(ctx context.Context, lvl slog.Level, msg string, attrs []slog.Attr) {
	l := Instance()
	if !l.Enabled(ctx, lvl) {
		return
	}
	enriched := enrich(ctx, attrs...)
	l.LogAttrs(ctx, lvl, msg, enriched...)
	sendLog(strings.ToLower(lvl.String()), msg, enriched)
}

// enrich appends the correlation fields: chi's request id when present and
// the trace and span ids of a recording span.
func enrich(ctx context.Context, attrs ...slog.Attr) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.String("hostname", Hostname()),
		)
	}
	return attrs
}
