package middleware_grpc

import (
	"context"
	"log/slog"
	"time"

	"eshop-api/internal/logger"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var tracer = otel.Tracer("GrpcMiddleware")

// mdCarrier lets the OpenTelemetry propagator read incoming gRPC metadata.
type mdCarrier metadata.MD

func (c mdCarrier) Get(key string) string {
	if v := metadata.MD(c).Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c mdCarrier) Set(key, value string) { metadata.MD(c).Set(key, value) }

func (c mdCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// UnaryTracingInterceptor continues the caller's trace, returns the trace id
// in the x-trace-id header and logs each call and its outcome.
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		ctx = otel.GetTextMapPropagator().Extract(ctx, mdCarrier(md))

		ctx, span := tracer.Start(ctx, info.FullMethod)
		defer span.End()

		// Same role as the X-Trace-ID header of the HTTP API. SetHeader
		// errors only when there is no server transport stream.
		out := metadata.Pairs("x-trace-id", span.SpanContext().TraceID().String())
		_ = grpc.SetHeader(ctx, out)

		attrs := logger.LogGRPCRequest(ctx, info.FullMethod, md, req, "incoming::request")
		if p, ok := peer.FromContext(ctx); ok {
			attrs = append(attrs, slog.String("grpc.remote", p.Addr.String()))
		}
		logger.Info(ctx, "GRPC", attrs...)

		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, code.String())
		} else {
			span.SetStatus(otelcodes.Ok, "")
		}

		logger.Info(ctx, "GRPC", logger.LogGRPCResponse(ctx, info.FullMethod, out, code, resp, time.Since(start), "incoming::response")...)
		return resp, err
	}
}
