package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes mapped to repository sentinels.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	exclusionViolation  = "23P01"
)

// FindOverlapping returns the bookings that overlap the interval, optionally restricted to one staff member.
// The predicate is start_time < interval.End AND end_time > interval.Start, so touching bookings are excluded.
func (r *Repository) FindOverlapping(
	ctx context.Context,
	staffID string,
	interval models.Interval,
) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, FindOverlappingSQL, staffID, interval.Start, interval.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// InsertIfNoConflict persists the booking unless it overlaps an existing booking of the same staff member.
// The check and the insert run in one transaction that holds the staff row lock, so concurrent inserts
// for the same staff member are serialized while other staff members are unaffected. The
// bookings_no_overlap exclusion constraint backs the check up at the storage level.
//
// It returns ErrStaffNotFound, ErrBookingConflict or ErrBookingIDTaken for the expected failures.
func (r *Repository) InsertIfNoConflict(ctx context.Context, booking models.Booking) (models.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Booking{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var lockedID string
	if err = tx.QueryRow(ctx, LockStaffSQL, booking.StaffID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Booking{}, ErrStaffNotFound
		}
		return models.Booking{}, fmt.Errorf("failed to lock staff row: %w", err)
	}

	var conflict bool
	err = tx.QueryRow(ctx, ConflictExistsSQL, booking.StaffID, booking.Interval.Start, booking.Interval.End).
		Scan(&conflict)
	if err != nil {
		return models.Booking{}, fmt.Errorf("failed to check booking conflict: %w", err)
	}
	if conflict {
		return models.Booking{}, ErrBookingConflict
	}

	err = tx.QueryRow(ctx, InsertBookingSQL,
		booking.ID,
		booking.StaffID,
		booking.Interval.Start,
		booking.Interval.End,
		booking.Customer.Name,
		booking.Customer.Phone,
		booking.Customer.Email,
	).Scan(&booking.CreatedAt)
	if err != nil {
		return models.Booking{}, mapInsertError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Booking{}, mapInsertError(err)
	}

	return booking, nil
}

// ListBookingsByStart returns every booking ordered by start, ties kept in insertion order.
func (r *Repository) ListBookingsByStart(ctx context.Context) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, ListBookingsByStartSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func scanBookings(rows pgx.Rows) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.StaffID,
			&booking.Interval.Start,
			&booking.Interval.End,
			&booking.Customer.Name,
			&booking.Customer.Phone,
			&booking.Customer.Email,
			&booking.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		booking.Interval.Start = booking.Interval.Start.UTC()
		booking.Interval.End = booking.Interval.End.UTC()
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read booking rows: %w", err)
	}

	return bookings, nil
}

// mapInsertError translates constraint violations raised by the insert or the commit.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case exclusionViolation:
			return ErrBookingConflict
		case uniqueViolation:
			return ErrBookingIDTaken
		case foreignKeyViolation:
			return ErrStaffNotFound
		}
	}

	return fmt.Errorf("failed to insert booking: %w", err)
}
