package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServerConfig holds gRPC server settings.
type ServerConfig struct {
	Port       int
	Reflection bool
	// Creds enables TLS when non-nil.
	Creds credentials.TransportCredentials
}

// Server wraps a gRPC server with health checks and the statement handler.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	port       int
}

// NewServer creates a new gRPC Server with health checking and, if enabled,
// reflection.
func NewServer(handler *Handler, logger *slog.Logger, cfg ServerConfig) *Server {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(loggingInterceptor(logger))}
	if cfg.Creds != nil {
		opts = append(opts, grpc.Creds(cfg.Creds))
	}
	grpcServer := grpc.NewServer(opts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	RegisterStatementServiceServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthSrv,
		logger:     logger,
		port:       cfg.Port,
	}
}

// Start listens on the configured port and serves until Stop is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting", "addr", lis.Addr().String())
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop marks the service as not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server stopping")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.DebugContext(ctx, "gRPC call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
