package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetStaffByID retrieves a single staff member by identifier.
// It returns ErrStaffNotFound when no such staff member exists.
func (r *Repository) GetStaffByID(ctx context.Context, id string) (models.Staff, error) {
	var staff models.Staff

	err := r.db.QueryRow(ctx, GetStaffByIDSQL, id).Scan(
		&staff.ID, &staff.Name, &staff.Email, &staff.Phone, &staff.Skills,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Staff{}, ErrStaffNotFound
		}
		return models.Staff{}, fmt.Errorf("failed to get staff %q: %w", id, err)
	}

	return staff, nil
}

// ListStaff returns every staff member ordered by identifier.
func (r *Repository) ListStaff(ctx context.Context) ([]models.Staff, error) {
	rows, err := r.db.Query(ctx, ListStaffSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	staff := make([]models.Staff, 0)
	for rows.Next() {
		var member models.Staff
		if errScan := rows.Scan(
			&member.ID, &member.Name, &member.Email, &member.Phone, &member.Skills,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan staff row: %w", errScan)
		}
		staff = append(staff, member)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read staff rows: %w", err)
	}

	return staff, nil
}

// UpsertStaff creates a staff member or replaces the descriptive fields of an existing one.
func (r *Repository) UpsertStaff(ctx context.Context, staff models.Staff) error {
	skills := staff.Skills
	if skills == nil {
		skills = []string{}
	}

	_, err := r.db.Exec(ctx, UpsertStaffSQL, staff.ID, staff.Name, staff.Email, staff.Phone, skills)
	if err != nil {
		return fmt.Errorf("failed to upsert staff %q: %w", staff.ID, err)
	}

	return nil
}
