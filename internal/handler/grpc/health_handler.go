package grpc

import (
	"context"

	"eshop-api/internal/logger"
	"eshop-api/internal/service"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name clients may pass in HealthCheckRequest.Service.
const ServiceName = "eshop"

type HealthHandler struct {
	grpc_health_v1.UnimplementedHealthServer
	service *service.HealthService
}

var GrpcHealthHandlerTracer = otel.Tracer("GrpcHealthHandler")

func NewHealthHandler(svc *service.HealthService) *HealthHandler {
	return &HealthHandler{service: svc}
}

// Check reports SERVING while MongoDB answers pings. An empty service name
// asks about the server as a whole.
func (h *HealthHandler) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	ctx, span := GrpcHealthHandlerTracer.Start(ctx, "GrpcHealthHandler.Check")
	defer span.End()
	logger.Info(ctx, "GrpcHealthHandler")

	if name := req.GetService(); name != "" && name != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}

	resp := &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}
	if !h.service.Check(ctx).Healthy() {
		resp.Status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return resp, nil
}
