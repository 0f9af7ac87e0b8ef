package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/chronos/internal/report"
	"github.com/UnknownOlympus/chronos/internal/service"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// writeError maps a service error to its status code and error kind.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, kind := http.StatusInternalServerError, "internal"

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, kind = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrStaffNotFound):
		status, kind = http.StatusNotFound, "staff_not_found"
	case errors.Is(err, service.ErrStaffUnavailable):
		status, kind = http.StatusConflict, "staff_unavailable"
	case errors.Is(err, report.ErrNoBookings):
		status, kind = http.StatusNotFound, "no_bookings"
	case errors.Is(err, service.ErrStoreUnavailable):
		status, kind = http.StatusServiceUnavailable, "store_unavailable"
	}

	if status >= http.StatusInternalServerError {
		requestID, _ := c.Get(requestIDKey)
		logger.ErrorContext(c.Request.Context(), "Request failed",
			"request_id", requestID, "path", c.FullPath(), "error", err)
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: kind, Detail: err.Error()})
}

func invalidInput(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid_input", Detail: err.Error()})
}
