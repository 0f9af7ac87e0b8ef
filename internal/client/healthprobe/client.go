// Package healthprobe checks a running instance through its gRPC health service.
package healthprobe

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const retryPolicy = `{
	"methodConfig": [{
		"name": [{"service": "grpc.health.v1.Health"}],
		"retryPolicy": {
			"maxAttempts": 4,
			"initialBackoff": ".01s",
			"maxBackoff": "1s",
			"backoffMultiplier": 2,
			"retryableStatusCodes": [ "UNAVAILABLE" ]
		}
	}]
}`

// NewClient creates a health client for grpcAddr that retries while the server is unavailable.
func NewClient(grpcAddr string, opts ...grpc.DialOption) (grpc_health_v1.HealthClient, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultServiceConfig(retryPolicy),
	}, opts...)

	conn, err := grpc.NewClient(grpcAddr, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	return grpc_health_v1.NewHealthClient(conn), conn, nil
}

// Check returns nil when the service reports SERVING.
func Check(ctx context.Context, client grpc_health_v1.HealthClient, service string) error {
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return fmt.Errorf("service %q is %s", service, resp.GetStatus())
	}

	return nil
}
