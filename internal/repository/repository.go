package repository

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/chronos/internal/models"
)

var (
	// ErrStaffNotFound is returned when no staff member exists with the requested identifier.
	ErrStaffNotFound = errors.New("staff member not found")
	// ErrBookingConflict is returned when a booking overlaps an existing booking of the same staff member.
	ErrBookingConflict = errors.New("booking overlaps an existing booking")
	// ErrBookingIDTaken is returned when the generated booking identifier already exists.
	ErrBookingIDTaken = errors.New("booking identifier already exists")
)

type Repository struct {
	db Database
}

// StaffRepository defines read and administrative operations on staff records.
type StaffRepository interface {
	GetStaffByID(ctx context.Context, id string) (models.Staff, error)
	ListStaff(ctx context.Context) ([]models.Staff, error)
	UpsertStaff(ctx context.Context, staff models.Staff) error
}

// BookingRepository defines the booking queries and the conflict-guarded insert.
// An empty staffID passed to FindOverlapping matches bookings of every staff member.
type BookingRepository interface {
	FindOverlapping(ctx context.Context, staffID string, interval models.Interval) ([]models.Booking, error)
	InsertIfNoConflict(ctx context.Context, booking models.Booking) (models.Booking, error)
	ListBookingsByStart(ctx context.Context) ([]models.Booking, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// The returned value satisfies both StaffRepository and BookingRepository.
func NewRepository(db Database) *Repository {
	return &Repository{db: db}
}
