// Command healthcheck probes a running server and exits non-zero when it is
// unhealthy. It is meant for container HEALTHCHECK directives.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"eshop-api/internal/client"
	grpcHandler "eshop-api/internal/handler/grpc"
	"eshop-api/internal/logger"
	"eshop-api/internal/version"
)

type healthResponse struct {
	Status string `json:"status"`
	Data   struct {
		MongoDB string `json:"mongodb"`
	} `json:"data"`
}

func main() {
	httpAddr := flag.String("http", "http://localhost:"+envOr("APP_PORT", "9000"), "base URL of the HTTP server")
	apiPrefix := flag.String("api", envOr("API_URL", "/api/v1"), "API prefix for the authenticated check")
	grpcAddr := flag.String("grpc", os.Getenv("GRPC_PORT"), "host:port of the gRPC server, empty to skip")
	timeout := flag.Duration("timeout", 5*time.Second, "probe timeout")
	flag.Parse()

	logger.Instance()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.NewHTTPClient(*httpAddr, *timeout)
	c.SetDefaultHeader("User-Agent", "eshop-healthcheck/"+version.Version)

	healthy := checkHTTP(ctx, c)

	// With admin credentials the login and token path is checked as well.
	email, password := os.Getenv("HEALTHCHECK_EMAIL"), os.Getenv("HEALTHCHECK_PASSWORD")
	if healthy && email != "" && password != "" {
		healthy = checkAuth(ctx, c, *apiPrefix, email, password)
	}
	if *grpcAddr != "" {
		healthy = checkGRPC(ctx, *grpcAddr) && healthy
	}

	if !healthy {
		os.Exit(1)
	}
}

func checkHTTP(ctx context.Context, c *client.HTTPClient) bool {
	var resp healthResponse
	status, err := c.Get(ctx, "/healthz", &resp)
	if err != nil {
		logger.Error(ctx, "HTTP health check failed", slog.Int("status", status), slog.String("error", err.Error()))
		return false
	}
	logger.Info(ctx, "HTTP health check passed", slog.String("mongodb", resp.Data.MongoDB))
	return true
}

func checkAuth(ctx context.Context, c *client.HTTPClient, apiPrefix, email, password string) bool {
	var login struct {
		Token string `json:"token"`
	}
	status, err := c.Post(ctx, apiPrefix+"/users/login", map[string]string{"email": email, "password": password}, &login)
	if err != nil || login.Token == "" {
		logger.Error(ctx, "Login check failed", slog.Int("status", status), slog.Any("error", err))
		return false
	}
	c.SetBearerToken(login.Token)

	var count struct {
		UserCount int64 `json:"userCount"`
	}
	status, err = c.Get(ctx, apiPrefix+"/users/get/count", &count)
	if err != nil {
		logger.Error(ctx, "Authenticated check failed", slog.Int("status", status), slog.String("error", err.Error()))
		return false
	}
	logger.Info(ctx, "Authenticated check passed", slog.Int64("users", count.UserCount))
	return true
}

func checkGRPC(ctx context.Context, target string) bool {
	if target[0] == ':' {
		target = "localhost" + target
	} else if _, err := strconv.Atoi(target); err == nil {
		target = "localhost:" + target
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Error(ctx, "Failed to connect to gRPC server", slog.String("target", target), slog.String("error", err.Error()))
		return false
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: grpcHandler.ServiceName})
	if err != nil {
		logger.Error(ctx, "gRPC health check failed", slog.String("target", target), slog.String("error", err.Error()))
		return false
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		logger.Error(ctx, "gRPC server not serving", slog.String("status", resp.GetStatus().String()))
		return false
	}
	logger.Info(ctx, "gRPC health check passed", slog.String("target", target))
	return true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
