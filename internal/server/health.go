package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports the state of the database and of the lock backend as JSON.
type HealthChecker struct {
	db   Pinger
	lock Pinger
	log  *slog.Logger
}

// NewHealthChecker builds the /healthz handler. A nil lock means the in-process lock is used,
// which has nothing to ping.
func NewHealthChecker(log *slog.Logger, db Pinger, lock Pinger) *HealthChecker {
	return &HealthChecker{
		db:   db,
		lock: lock,
		log:  log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.db.Ping(req.Context()); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: DB ping", "error", err)
	} else {
		status["database"] = "ok"
	}

	if h.lock == nil {
		status["lock_backend"] = "in_process"
	} else if err = h.lock.Ping(req.Context()); err != nil {
		status["lock_backend"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: lock backend ping", "error", err)
	} else {
		status["lock_backend"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
