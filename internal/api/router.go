// Package api serves the booking core over HTTP with gin.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options tunes the router middleware.
type Options struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

// NewRouter wires the middleware chain and the /api/v1 routes.
func NewRouter(logger *slog.Logger, services Services, appMetrics *metrics.Metrics, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(RequestID())
	r.Use(StructuredLogger(logger))
	r.Use(RequestMetrics(appMetrics))
	r.Use(gin.Recovery())
	r.Use(RateLimit(logger, opts.RateLimitRPS, opts.RateLimitBurst))
	r.Use(Timeout(opts.RequestTimeout))

	h := &handlers{log: logger, services: services}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", h.ping)
		v1.POST("/availability", h.availability)

		v1.POST("/bookings", h.createBooking)
		v1.GET("/bookings", h.listBookings)
		v1.GET("/bookings/export.csv", h.exportCSV)
		v1.GET("/bookings/export.xlsx", h.exportXLSX)

		v1.GET("/staff", h.listStaff)
		v1.PUT("/staff/:id", h.upsertStaff)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	}

	return config
}
