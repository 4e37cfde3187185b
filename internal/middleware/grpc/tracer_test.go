package middleware_grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestUnaryTracingInterceptor_PassesThrough(t *testing.T) {
	interceptor := UnaryTracingInterceptor()
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("user-agent", "test"))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	want := &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}
	resp, err := interceptor(ctx, &grpc_health_v1.HealthCheckRequest{}, info, func(ctx context.Context, req any) (any, error) {
		return want, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, resp)

	_, err = interceptor(ctx, &grpc_health_v1.HealthCheckRequest{}, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Unavailable, "mongodb down")
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

type headerStream struct {
	header metadata.MD
}

func (s *headerStream) Method() string { return "/grpc.health.v1.Health/Check" }

func (s *headerStream) SetHeader(md metadata.MD) error {
	s.header = metadata.Join(s.header, md)
	return nil
}

func (s *headerStream) SendHeader(md metadata.MD) error { return s.SetHeader(md) }

func (s *headerStream) SetTrailer(metadata.MD) error { return nil }

func TestUnaryTracingInterceptor_SetsTraceHeader(t *testing.T) {
	stream := &headerStream{}
	ctx := grpc.NewContextWithServerTransportStream(context.Background(), stream)
	info := &grpc.UnaryServerInfo{FullMethod: stream.Method()}

	_, err := UnaryTracingInterceptor()(ctx, &grpc_health_v1.HealthCheckRequest{}, info, func(ctx context.Context, req any) (any, error) {
		return &grpc_health_v1.HealthCheckResponse{}, nil
	})
	require.NoError(t, err)
	require.Len(t, stream.header.Get("x-trace-id"), 1)
	assert.Len(t, stream.header.Get("x-trace-id")[0], 32)
}

func TestMDCarrier(t *testing.T) {
	c := mdCarrier(metadata.MD{})
	c.Set("Traceparent", "00-abc")
	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
	assert.Empty(t, c.Get("missing"))
}
