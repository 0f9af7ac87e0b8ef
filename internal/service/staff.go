package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/repository"
)

// StaffService is the administrative path for staff records.
type StaffService struct {
	log   *slog.Logger
	staff repository.StaffRepository
}

func NewStaffService(log *slog.Logger, staff repository.StaffRepository) *StaffService {
	return &StaffService{log: log, staff: staff}
}

// List returns all staff members ordered by identifier.
func (s *StaffService) List(ctx context.Context) ([]models.Staff, error) {
	staff, err := s.staff.ListStaff(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	return staff, nil
}

// Upsert creates or updates a staff member. Skill tags are trimmed and empty tags dropped.
func (s *StaffService) Upsert(ctx context.Context, staff models.Staff) (models.Staff, error) {
	staff.ID = strings.TrimSpace(staff.ID)
	if err := validate.Struct(staff); err != nil {
		return models.Staff{}, invalidInput(err)
	}

	skills := make([]string, 0, len(staff.Skills))
	for _, skill := range staff.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	staff.Skills = skills

	if err := s.staff.UpsertStaff(ctx, staff); err != nil {
		s.log.ErrorContext(ctx, "Failed to upsert staff", "staff_id", staff.ID, "error", err)
		return models.Staff{}, storeUnavailable(err)
	}

	s.log.InfoContext(ctx, "Staff saved", "staff_id", staff.ID)
	return staff, nil
}
