package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/chronos/internal/locker"
	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxIDAttempts bounds the retries after a booking identifier collision.
const maxIDAttempts = 3

// ReservationRequest carries the input of a reservation.
type ReservationRequest struct {
	StaffID         string          `validate:"required,max=64"`
	Start           time.Time       `validate:"required"`
	DurationMinutes int             `validate:"min=1"`
	Customer        models.Customer `validate:"required"`
}

// ReservationService creates bookings without ever double-booking a staff member.
type ReservationService struct {
	log      *slog.Logger
	staff    repository.StaffRepository
	bookings repository.BookingRepository
	locker   locker.Locker
	metrics  *metrics.Metrics
	newID    func() string
}

// Option configures a ReservationService.
type Option func(*ReservationService)

// WithIDGenerator replaces the booking identifier generator.
func WithIDGenerator(generate func() string) Option {
	return func(s *ReservationService) {
		s.newID = generate
	}
}

func NewReservationService(
	log *slog.Logger,
	staff repository.StaffRepository,
	bookings repository.BookingRepository,
	lock locker.Locker,
	appMetrics *metrics.Metrics,
	opts ...Option,
) *ReservationService {
	svc := &ReservationService{
		log:      log,
		staff:    staff,
		bookings: bookings,
		locker:   lock,
		metrics:  appMetrics,
		newID:    NewBookingID,
	}
	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

// Reserve books the staff member for [Start, Start+DurationMinutes) and returns the stored booking.
//
// The staff member's lock is held from the conflict check until the insert commits, so of several
// concurrent overlapping requests for one staff member exactly one succeeds. Requests for different
// staff members use different locks. Failures are ErrInvalidInput, ErrStaffNotFound,
// ErrStaffUnavailable or ErrStoreUnavailable; none of them leaves a partial write.
func (s *ReservationService) Reserve(ctx context.Context, req ReservationRequest) (models.Booking, error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Reserve",
		trace.WithAttributes(attribute.String("staff.id", req.StaffID)))
	defer span.End()

	startedAt := time.Now()

	booking, err := s.reserve(ctx, req)

	result := resultLabel(err)
	s.metrics.ReservationDuration.Observe(time.Since(startedAt).Seconds())
	s.metrics.ReservationsTotal.WithLabelValues(result).Inc()

	span.SetAttributes(attribute.String("reservation.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	} else {
		span.SetAttributes(attribute.String("booking.id", booking.ID))
	}

	return booking, err
}

func (s *ReservationService) reserve(ctx context.Context, req ReservationRequest) (models.Booking, error) {
	if err := validate.Struct(req); err != nil {
		return models.Booking{}, invalidInput(err)
	}
	interval, err := models.IntervalFromDuration(req.Start, req.DurationMinutes)
	if err != nil {
		return models.Booking{}, invalidInput(err)
	}

	if _, err = s.staff.GetStaffByID(ctx, req.StaffID); err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return models.Booking{}, fmt.Errorf("%w: %q", ErrStaffNotFound, req.StaffID)
		}
		s.log.ErrorContext(ctx, "Failed to look up staff", "staff_id", req.StaffID, "error", err)
		return models.Booking{}, storeUnavailable(err)
	}

	unlock, err := s.locker.Lock(ctx, req.StaffID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to acquire staff lock", "staff_id", req.StaffID, "error", err)
		return models.Booking{}, storeUnavailable(err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		candidate := models.Booking{
			ID:       s.newID(),
			StaffID:  req.StaffID,
			Interval: interval,
			Customer: req.Customer,
		}

		saved, insertErr := s.bookings.InsertIfNoConflict(ctx, candidate)
		switch {
		case insertErr == nil:
			s.log.InfoContext(ctx, "Booking created",
				"booking_id", saved.ID, "staff_id", saved.StaffID, "start", saved.Start(), "end", saved.End())
			return saved, nil
		case errors.Is(insertErr, repository.ErrBookingConflict):
			s.log.InfoContext(ctx, "Staff not available", "staff_id", req.StaffID, "start", interval.Start)
			return models.Booking{}, fmt.Errorf("%w: %q from %s to %s", ErrStaffUnavailable,
				req.StaffID, interval.Start.Format(time.RFC3339), interval.End.Format(time.RFC3339))
		case errors.Is(insertErr, repository.ErrStaffNotFound):
			return models.Booking{}, fmt.Errorf("%w: %q", ErrStaffNotFound, req.StaffID)
		case errors.Is(insertErr, repository.ErrBookingIDTaken) && attempt < maxIDAttempts:
			s.log.WarnContext(ctx, "Booking identifier collision, generating a new one",
				"booking_id", candidate.ID, "attempt", attempt)
		default:
			s.log.ErrorContext(ctx, "Failed to insert booking", "staff_id", req.StaffID, "error", insertErr)
			return models.Booking{}, storeUnavailable(insertErr)
		}
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultCreated
	case errors.Is(err, ErrInvalidInput):
		return metrics.ResultInvalid
	case errors.Is(err, ErrStaffNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrStaffUnavailable):
		return metrics.ResultUnavailable
	default:
		return metrics.ResultStoreError
	}
}
