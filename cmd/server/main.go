package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"eshop-api/internal/auth"
	"eshop-api/internal/config"
	"eshop-api/internal/database"
	"eshop-api/internal/events"
	grpcHandler "eshop-api/internal/handler/grpc"
	handler "eshop-api/internal/handler/http"
	"eshop-api/internal/logger"
	middleware_grpc "eshop-api/internal/middleware/grpc"
	"eshop-api/internal/repository"
	"eshop-api/internal/service"
	"eshop-api/internal/tracer"
	"eshop-api/internal/version"
)

const shutdownTimeout = 15 * time.Second

// newHTTPServer builds the API server. Request contexts carry the values of
// ctx but not its cancellation, so a shutdown signal lets Shutdown drain the
// requests already in flight.
func newHTTPServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
}

func main() {
	bgCtx := context.Background()
	globalCtx, cancel := signal.NotifyContext(bgCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Instance()
	cfg := config.Instance()

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	shutdownTelemetry, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		logger.Warn(globalCtx, "Telemetry disabled", slog.String("error", err.Error()))
	}

	db, err := database.Instance(globalCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Error(globalCtx, "Failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error(globalCtx, "Failed to create upload directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info(globalCtx, "Publishing events to Kafka", slog.String("topic", cfg.KafkaTopic))
	} else {
		logger.Warn(globalCtx, "Missing KAFKA_BROKERS will skip publishing events")
	}

	// Wiring
	categoryRepo := repository.NewCategoryRepository(db.Database)
	productRepo := repository.NewProductRepository(db.Database)
	userRepo := repository.NewUserRepository(db.Database)
	orderRepo := repository.NewOrderRepository(db.Database)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret)

	categoryService := service.NewCategoryService(categoryRepo, productRepo, publisher)
	productService := service.NewProductService(productRepo, categoryRepo, publisher)
	userService := service.NewUserService(userRepo, tokens, publisher)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, publisher)
	healthService := service.NewHealthService(db.Client)

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix: cfg.APIPrefix,
		UploadDir: cfg.UploadDir,
		Tokens:    tokens,
		AllowList: auth.DefaultAllowList(cfg.APIPrefix),
	}, handler.Handlers{
		Categories: handler.NewCategoryHandler(categoryService),
		Products:   handler.NewProductHandler(productService),
		Users:      handler.NewUserHandler(userService),
		Orders:     handler.NewOrderHandler(orderService),
		Health:     handler.NewHealthHandler(healthService),
	})

	httpServer := newHTTPServer(globalCtx, ":"+cfg.AppPort, router)

	go func() {
		logger.Info(globalCtx, "HTTP server running", slog.String("addr", httpServer.Addr), slog.String("api", cfg.APIPrefix))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(globalCtx, "HTTP server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GrpcPort != "" {
		grpcServer = grpc.NewServer(
			grpc.UnaryInterceptor(middleware_grpc.UnaryTracingInterceptor()),
		)
		healthpb.RegisterHealthServer(grpcServer, grpcHandler.NewHealthHandler(healthService))
		reflection.Register(grpcServer)

		lis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
		if err != nil {
			logger.Error(globalCtx, "failed to listen", slog.String("error", err.Error()))
			os.Exit(1)
		}

		go func() {
			logger.Info(globalCtx, "gRPC server running", slog.String("port", cfg.GrpcPort))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error(globalCtx, "failed to serve", slog.String("error", err.Error()))
				cancel()
			}
		}()
	}

	<-globalCtx.Done()
	logger.Info(bgCtx, "Shutting down")

	ctx, done := context.WithTimeout(bgCtx, shutdownTimeout)
	defer done()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(ctx, "HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := publisher.Close(); err != nil {
		logger.Error(ctx, "Failed to close event publisher", slog.String("error", err.Error()))
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.Error(ctx, "Failed to disconnect from MongoDB", slog.String("error", err.Error()))
	}
	if shutdownTelemetry != nil {
		shutdownTelemetry()
	}

	logger.Info(bgCtx, "Server exited cleanly")
}
