// Command healthcheck exits with status 0 when the local instance reports SERVING over gRPC.
// It is meant for container health checks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/UnknownOlympus/chronos/internal/client/healthprobe"
	"github.com/UnknownOlympus/chronos/internal/server"
)

func main() {
	addr := flag.String("addr", "localhost:9091", "gRPC address of the instance")
	timeout := flag.Duration("timeout", 3*time.Second, "overall check timeout")
	flag.Parse()

	if err := run(*addr, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, conn, err := healthprobe.NewClient(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	return healthprobe.Check(ctx, client, server.ServiceName)
}
