package healthprobe_test

import (
	"context"
	"net"
	"testing"

	"github.com/UnknownOlympus/chronos/internal/client/healthprobe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		client, conn, err := healthprobe.NewClient("bufnet")

		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NotNil(t, conn)
		require.NoError(t, conn.Close())
	})

	t.Run("error - failed to create client", func(t *testing.T) {
		t.Parallel()
		client, conn, err := healthprobe.NewClient("Segment%%2815197306101420000%29.ts")

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to create grpc client")
		assert.Nil(t, client)
		assert.Nil(t, conn)
	})
}

func TestCheck(t *testing.T) {
	t.Parallel()

	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	defer s.GracefulStop()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus("down", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(s, healthSrv)
	go func() { _ = s.Serve(lis) }()

	client, conn, err := healthprobe.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
	)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, healthprobe.Check(t.Context(), client, ""))

	err = healthprobe.Check(t.Context(), client, "down")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_SERVING")

	err = healthprobe.Check(t.Context(), client, "unknown")
	require.ErrorContains(t, err, "health check failed")
}
