package tracer

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"eshop-api/internal/config"
	"eshop-api/internal/logger"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	once         sync.Once
	shutdownFunc = func() {}
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

func newExporter(ctx context.Context, cfg *config.Config) (trace.SpanExporter, error) {
	if cfg.RemoteTraceRpcURI != "" {
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
		)
	}
	if cfg.TraceStdout {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	}
	return nil, nil
}

// Instance installs the global tracer provider and starts the profiler once.
// When neither a remote collector nor stdout tracing is configured, spans stay
// in the no-op provider but trace context is still propagated.
func Instance(globalCtx context.Context, cfg *config.Config) (func(), error) {
	once.Do(func() {
		log := logger.Instance()

		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		exp, err := newExporter(globalCtx, cfg)
		if err != nil {
			log.Error("Failed to create trace exporter", slog.String("error", err.Error()))
			initErr = err
			return
		}

		if exp != nil {
			res, err := resource.New(globalCtx,
				resource.WithAttributes(
					semconv.ServiceNameKey.String(cfg.AppName),
					attribute.String("env", os.Getenv("ENV")),
				),
			)
			if err != nil {
				log.Error("Failed to create resource", slog.String("error", err.Error()))
				initErr = err
				return
			}

			tp := trace.NewTracerProvider(
				trace.WithBatcher(exp),
				trace.WithResource(res),
			)
			otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
			log.Info("OpenTelemetry Tracer initialized")

			shutdownFunc = func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					log.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
				}
			}
		}

		if cfg.RemoteProfilingHttpURI == "" {
			return
		}
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.AppName,
			ServerAddress:   cfg.RemoteProfilingHttpURI,
			Logger:          pyroLogrus,
		})
		if err != nil {
			log.Error("Pyroscope failed to start", slog.String("error", err.Error()))
			return
		}
		log.Info("Pyroscope started successfully")

		stopTracer := shutdownFunc
		shutdownFunc = func() {
			stopTracer()
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", slog.String("error", err.Error()))
			}
		}
	})

	return shutdownFunc, initErr
}
