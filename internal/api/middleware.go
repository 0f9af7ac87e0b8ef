package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDKey = "request_id"

// RequestID adds a unique request ID to each request, keeping one supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger writes one access log record per request.
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		requestID, _ := c.Get(requestIDKey)
		logger.InfoContext(c.Request.Context(), "HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequestMetrics counts requests by method, route template and status.
func RequestMetrics(appMetrics *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		appMetrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Timeout bounds the request context, and with it every store call the handler makes.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// limiterIdleTTL is how long a client's bucket is kept after its last request.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore holds one token bucket per client IP. Buckets idle for longer than idleTTL
// are swept at most once per idleTTL, from the request path.
type rateLimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiterStore(rps float64, burst int, idleTTL time.Duration) *rateLimiterStore {
	return &rateLimiterStore{
		limiters:  make(map[string]*clientLimiter),
		rps:       rate.Limit(rps),
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		s.sweep(now)
	}

	entry, exists := s.limiters[ip]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.limiters[ip] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// sweep drops idle buckets; callers hold mu.
func (s *rateLimiterStore) sweep(now time.Time) {
	for ip, entry := range s.limiters {
		if now.Sub(entry.lastSeen) >= s.idleTTL {
			delete(s.limiters, ip)
		}
	}
	s.lastSweep = now
}

// RateLimit rejects requests beyond rps per client IP with 429.
func RateLimit(logger *slog.Logger, rps float64, burst int) gin.HandlerFunc {
	store := newRateLimiterStore(rps, burst, limiterIdleTTL)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.getLimiter(ip).Allow() {
			logger.WarnContext(c.Request.Context(), "Rate limit exceeded", "ip", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error:  "rate_limited",
				Detail: "rate limit exceeded, try again later",
			})
			return
		}
		c.Next()
	}
}
