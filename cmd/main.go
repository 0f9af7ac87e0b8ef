package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/UnknownOlympus/chronos/internal/api"
	"github.com/UnknownOlympus/chronos/internal/bot"
	"github.com/UnknownOlympus/chronos/internal/config"
	"github.com/UnknownOlympus/chronos/internal/locker"
	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/repository"
	"github.com/UnknownOlympus/chronos/internal/server"
	"github.com/UnknownOlympus/chronos/internal/service"
	"github.com/UnknownOlympus/chronos/internal/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const (
	redisTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	healthInterval  = 10 * time.Second
	lockKeyPrefix   = "chronos:staff-lock:"
	serviceName     = "chronos"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	otelShutdown, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := otelShutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to flush traces", "error", shutdownErr)
		}
	}()

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb)
	if cfg.Database.Migrate {
		if err = repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to apply schema: %v", err)
		}
	}

	staffLock, lockPinger, closeLock, err := newLocker(ctx, logger, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer closeLock()

	availability := service.NewAvailabilityService(logger, repo, repo, appMetrics)
	reservations := service.NewReservationService(logger, repo, repo, staffLock, appMetrics)
	listings := service.NewListingService(logger, repo, appMetrics)
	staff := service.NewStaffService(logger, repo)

	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logger, api.Services{
		Availability: availability,
		Reservations: reservations,
		Listings:     listings,
		Staff:        staff,
	}, appMetrics, api.Options{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORSOrigins:    cfg.CORSOrigins,
	})

	// servers tracks every goroutine that must drain before the deferred closes run.
	var servers sync.WaitGroup

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: cfg.RequestTimeout,
		WriteTimeout:      2 * cfg.RequestTimeout,
	}
	logger.InfoContext(ctx, "Starting API server", "port", cfg.HTTPPort)
	servers.Add(1)
	go func() {
		defer servers.Done()
		server.Serve(ctx, logger, "API", apiServer)
	}()

	servers.Add(1)
	go func() {
		defer servers.Done()
		server.StartMonitoringServer(
			ctx, logger, reg, server.NewHealthChecker(logger, dtb, lockPinger), cfg.MonitoringPort,
		)
	}()

	grpcHealth := server.NewGRPCHealth(logger, dtb)
	servers.Add(2) //nolint:mnd // health refresher and gRPC server
	go func() {
		defer servers.Done()
		grpcHealth.Run(ctx, healthInterval)
	}()
	go func() {
		defer servers.Done()
		if grpcErr := server.StartGRPCServer(
			ctx, logger, grpcHealth, cfg.GRPCPort, grpc.StatsHandler(otelgrpc.NewServerHandler()),
		); grpcErr != nil {
			logger.ErrorContext(ctx, "gRPC health server stopped", "error", grpcErr)
		}
	}()

	var chronosBot *bot.Bot
	if cfg.Telegram.Token != "" {
		chronosBot, err = bot.NewBot(logger, bot.Services{
			Availability: availability,
			Reservations: reservations,
			Listings:     listings,
			Staff:        staff,
		}, appMetrics, cfg.Telegram.Token, cfg.Telegram.PollerTimeout, cfg.RequestTimeout)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go chronosBot.Start()
	} else {
		logger.InfoContext(ctx, "Telegram token is not set, bot is disabled")
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	if chronosBot != nil {
		chronosBot.Stop()
	}
	servers.Wait()

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// newLocker picks the per-staff lock: Redis when an address is configured, in-process otherwise.
// The returned pinger is nil for the in-process lock.
func newLocker(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.RedisConfig,
) (locker.Locker, server.Pinger, func(), error) {
	if cfg.Addr == "" {
		logger.InfoContext(ctx, "Redis address is not set, using in-process staff locks")
		return locker.NewKeyedMutex(), nil, func() {}, nil
	}

	client, err := locker.NewRedisClient(ctx, cfg.Addr, cfg.Password, redisTimeout)
	if err != nil {
		return nil, nil, nil, err
	}

	redisLocker := locker.NewRedisLocker(logger, client, lockKeyPrefix, cfg.LockTTL)
	closeClient := func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("Failed to close Redis client", "error", closeErr)
		}
	}

	return redisLocker, redisLocker, closeClient, nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
