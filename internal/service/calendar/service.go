package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
	"github.com/telecare/scheduler/internal/schedule"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

// Default grid bounds for the week and day views.
const (
	GridStartHour = 8
	GridEndHour   = 18
)

// Service derives presentation-ready groupings from the appointment
// store. Projections never mutate state.
type Service struct {
	repo repository.AppointmentRepository
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Month(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID, month time.Time) ([]schedule.MonthCell, error) {
	grid := schedule.MonthGrid(month)
	appointments, err := s.window(ctx, role, participantID, grid[0], grid[len(grid)-1].AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return schedule.ProjectMonth(month, appointments), nil
}

func (s *Service) Week(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID, date time.Time) ([]schedule.DayProjection, error) {
	weekStart := schedule.DayStart(date).AddDate(0, 0, -int(date.Weekday()))
	appointments, err := s.window(ctx, role, participantID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	return schedule.ProjectWeek(date, GridStartHour, GridEndHour, appointments), nil
}

func (s *Service) Day(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID, date time.Time) (*schedule.DayProjection, error) {
	dayStart := schedule.DayStart(date)
	appointments, err := s.window(ctx, role, participantID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	proj := schedule.ProjectDay(date, GridStartHour, GridEndHour, schedule.DayViewStep, appointments)
	return &proj, nil
}

func (s *Service) Agenda(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID, now time.Time) (*schedule.Agenda, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest("unknown participant role", nil)
	}
	appointments, err := s.repo.ListForParticipant(ctx, role, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	agenda := schedule.ProjectAgenda(now, appointments)
	return &agenda, nil
}

func (s *Service) window(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest("unknown participant role", nil)
	}
	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{
		Role:          role,
		ParticipantID: participantID,
		From:          from,
		To:            to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
