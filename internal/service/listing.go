package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/chronos/internal/metrics"
	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/report"
	"github.com/UnknownOlympus/chronos/internal/repository"
)

// ListingService exposes read-only views of all bookings.
type ListingService struct {
	log      *slog.Logger
	bookings repository.BookingRepository
	metrics  *metrics.Metrics
}

func NewListingService(
	log *slog.Logger,
	bookings repository.BookingRepository,
	appMetrics *metrics.Metrics,
) *ListingService {
	return &ListingService{log: log, bookings: bookings, metrics: appMetrics}
}

// ListBookings returns every booking ascending by start; bookings with equal starts keep insertion order.
func (s *ListingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.bookings.ListBookingsByStart(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list bookings", "error", err)
		return nil, storeUnavailable(err)
	}

	return bookings, nil
}

// ExportCSV writes the bookings, in listing order, as comma separated text with a header row.
func (s *ListingService) ExportCSV(ctx context.Context, w io.Writer) error {
	defer s.observe("csv", time.Now())

	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return err
	}

	if err = report.WriteCSV(w, bookings); err != nil {
		return fmt.Errorf("failed to export bookings: %w", err)
	}

	return nil
}

// ExportXLSX renders the bookings as an Excel workbook with one sheet per staff member.
// It returns report.ErrNoBookings when there is nothing to export.
func (s *ListingService) ExportXLSX(ctx context.Context) (*bytes.Buffer, error) {
	defer s.observe("xlsx", time.Now())

	bookings, err := s.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	buffer, err := report.GenerateExcelReport(bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to export bookings: %w", err)
	}

	return buffer, nil
}

func (s *ListingService) observe(format string, startedAt time.Time) {
	s.metrics.ExportDuration.WithLabelValues(format).Observe(time.Since(startedAt).Seconds())
}
