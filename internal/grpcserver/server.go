package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"time"

	commonmetrics "github.com/Merco74/ScoutPlateform/common/metrics"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes the standard gRPC health service so orchestrators can
// probe the process without going through HTTP.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

func New(logger *slog.Logger, m *commonmetrics.Metrics) *Server {
	s := &Server{
		health: health.NewServer(),
		logger: logger,
	}
	s.grpcServer = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(m.Grpc.UnaryServerInterceptor(), s.logUnary),
	)
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.DebugContext(ctx, "grpc call", "method", info.FullMethod, "duration_ms", time.Since(start).Milliseconds(), "error", err)
	return resp, err
}

// SetServing flips the status reported for the whole server.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// Stop reports NOT_SERVING to watchers, then drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
