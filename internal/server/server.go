// Package server runs the monitoring endpoints: HTTP health and metrics, and the gRPC health service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// NewMonitoringHandler routes /healthz to the checker and /metrics to the registry.
func NewMonitoringHandler(reg *prometheus.Registry, checker http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", checker)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

// StartMonitoringServer serves health check and metrics endpoints on the port until ctx is cancelled.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	checker http.Handler,
	port int,
) {
	log.InfoContext(ctx, "Starting monitoring server", "port", port)

	Serve(ctx, log, "Monitoring", &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewMonitoringHandler(reg, checker),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, log *slog.Logger, name string, server *http.Server) {
	var err error
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.InfoContext(ctx, name+" server shutting down.")
		if err = server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, name+" server failed to shutdown", "error", err)
			return
		}
	case err = <-serverErr:
		log.ErrorContext(ctx, name+" server failed", "error", err)
	}
}
