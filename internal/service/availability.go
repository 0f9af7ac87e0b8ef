package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AvailabilityService answers which staff members are free for an interval.
type AvailabilityService struct {
	log      *slog.Logger
	staff    repository.StaffRepository
	bookings repository.BookingRepository
	metrics  *metrics.Metrics
}

func NewAvailabilityService(
	log *slog.Logger,
	staff repository.StaffRepository,
	bookings repository.BookingRepository,
	appMetrics *metrics.Metrics,
) *AvailabilityService {
	return &AvailabilityService{log: log, staff: staff, bookings: bookings, metrics: appMetrics}
}

// FindAvailable returns the staff members without a booking that overlaps
// [start, start+durationMinutes). The result is a snapshot: nothing is reserved, and a
// concurrent Reserve may take any returned staff member right after the call.
func (s *AvailabilityService) FindAvailable(
	ctx context.Context,
	start time.Time,
	durationMinutes int,
) ([]models.Staff, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.FindAvailable",
		trace.WithAttributes(attribute.Int("duration.minutes", durationMinutes)))
	defer span.End()

	if start.IsZero() {
		return nil, invalidInput(errors.New("start time is required"))
	}
	interval, err := models.IntervalFromDuration(start, durationMinutes)
	if err != nil {
		return nil, invalidInput(err)
	}

	s.metrics.AvailabilityQueries.Inc()

	busy, err := s.bookings.FindOverlapping(ctx, "", interval)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to query busy staff", "error", err)
		return nil, storeUnavailable(err)
	}

	busyIDs := make(map[string]struct{}, len(busy))
	for _, booking := range busy {
		busyIDs[booking.StaffID] = struct{}{}
	}

	staff, err := s.staff.ListStaff(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list staff", "error", err)
		return nil, storeUnavailable(err)
	}

	available := make([]models.Staff, 0, len(staff))
	for _, member := range staff {
		if _, isBusy := busyIDs[member.ID]; !isBusy {
			available = append(available, member)
		}
	}

	s.metrics.AvailableStaff.Observe(float64(len(available)))
	span.SetAttributes(attribute.Int("staff.available", len(available)))
	s.log.DebugContext(ctx, "Availability computed",
		"start", interval.Start, "end", interval.End, "busy", len(busyIDs), "available", len(available))

	return available, nil
}
