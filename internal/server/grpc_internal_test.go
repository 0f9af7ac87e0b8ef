package server

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func dialBufconn(t *testing.T, lis *bufconn.Listener) grpc_health_v1.HealthClient {
	t.Helper()
	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return grpc_health_v1.NewHealthClient(conn)
}

func TestServeGRPCReturnsAfterShutdown(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	healthSrv := NewGRPCHealth(logger, okPinger{})
	healthSrv.Refresh(t.Context())

	lis := bufconn.Listen(1024 * 1024)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	served := make(chan error, 1)
	go func() { served <- serveGRPC(ctx, logger, healthSrv, lis) }()

	client := dialBufconn(t, lis)
	resp, err := client.Check(t.Context(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()

	select {
	case err = <-served:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("gRPC server did not stop after cancellation")
	}
}

func TestStopGRPCForcesOpenStreams(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	healthSrv := NewGRPCHealth(logger, okPinger{})
	lis := bufconn.Listen(1024 * 1024)
	grpcServer := grpc.NewServer()
	healthSrv.Register(grpcServer)
	go func() { _ = grpcServer.Serve(lis) }()

	client := dialBufconn(t, lis)
	stream, err := client.Watch(t.Context(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)

	stopped := make(chan struct{})
	go func() {
		stopGRPC(grpcServer, 100*time.Millisecond)
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stopGRPC did not force the server closed")
	}

	_, err = stream.Recv()
	require.Error(t, err)
}
