// Package service implements the booking core: availability lookups, conflict-free reservations,
// booking listings and exports, and staff administration.
package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
)

var (
	// ErrInvalidInput is returned for malformed or out-of-range request data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStaffNotFound is returned when the referenced staff member does not exist.
	ErrStaffNotFound = errors.New("staff not found")
	// ErrStaffUnavailable is returned when the staff member already has an overlapping booking.
	ErrStaffUnavailable = errors.New("staff not available")
	// ErrStoreUnavailable is returned when the store or the lock backend failed. No partial write happened.
	ErrStoreUnavailable = errors.New("store unavailable")
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())
	tracer   = otel.Tracer("github.com/UnknownOlympus/chronos/internal/service")
)

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
