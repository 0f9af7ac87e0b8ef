package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported next to the overall "" entry.
const ServiceName = "chronos.Booking"

// GRPCHealth serves grpc.health.v1.Health with a status that follows database pings.
type GRPCHealth struct {
	log    *slog.Logger
	db     Pinger
	server *health.Server
}

func NewGRPCHealth(log *slog.Logger, db Pinger) *GRPCHealth {
	h := &GRPCHealth{log: log, db: db, server: health.NewServer()}
	h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return h
}

// Register attaches the health service to the gRPC server.
func (h *GRPCHealth) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.server)
}

// Refresh pings the database once and publishes the result.
func (h *GRPCHealth) Refresh(ctx context.Context) {
	if err := h.db.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "gRPC health: database ping failed", "error", err)
		h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
}

// Run refreshes the status every interval until ctx is cancelled, then marks the service as shut down.
func (h *GRPCHealth) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

func (h *GRPCHealth) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}

// StartGRPCServer serves the health service on the port until ctx is cancelled. It returns only
// after in-flight RPCs have drained, or after shutdownTimeout when they do not.
func StartGRPCServer(
	ctx context.Context,
	log *slog.Logger,
	healthSrv *GRPCHealth,
	port int,
	opts ...grpc.ServerOption,
) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	return serveGRPC(ctx, log, healthSrv, lis, opts...)
}

func serveGRPC(
	ctx context.Context,
	log *slog.Logger,
	healthSrv *GRPCHealth,
	lis net.Listener,
	opts ...grpc.ServerOption,
) error {
	grpcServer := grpc.NewServer(opts...)
	healthSrv.Register(grpcServer)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.InfoContext(ctx, "gRPC server shutting down.")
		// Watch clients see NOT_SERVING before the listener closes.
		healthSrv.server.Shutdown()
		stopGRPC(grpcServer, shutdownTimeout)
	}()

	log.InfoContext(ctx, "Starting gRPC health server", "port", lis.Addr().String())
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	<-drained

	return nil
}

// stopGRPC stops the server gracefully, forcing it closed once timeout has passed.
func stopGRPC(grpcServer *grpc.Server, timeout time.Duration) {
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(timeout):
		grpcServer.Stop()
		<-stopped
	}
}
