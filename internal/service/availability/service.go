package availability

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
	"github.com/telecare/scheduler/internal/schedule"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Service struct {
	repo repository.AvailabilityRepository
}

func NewService(repo repository.AvailabilityRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, doctorID uuid.UUID) (*model.AvailabilityProfile, error) {
	profile, err := s.repo.Get(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability profile: %w", err)
	}
	return profile, nil
}

func (s *Service) Update(ctx context.Context, doctorID uuid.UUID, req *model.UpdateAvailabilityRequest) (*model.AvailabilityProfile, error) {
	profile := &model.AvailabilityProfile{
		DoctorID:     doctorID,
		WorkingHours: req.WorkingHours,
		TimeBlocks:   req.TimeBlocks,
	}

	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to store availability profile: %w", err)
	}
	return profile, nil
}

// CheckWindow answers whether [startTime, endTime) on the given weekday
// is open for the doctor.
func (s *Service) CheckWindow(ctx context.Context, doctorID uuid.UUID, day, startTime, endTime string) (bool, error) {
	if !validDay(day) {
		return false, apperrors.BadRequest("unknown weekday", nil)
	}
	if !hhmmRe.MatchString(startTime) || !hhmmRe.MatchString(endTime) {
		return false, apperrors.BadRequest("times must be HH:MM", nil)
	}
	if startTime >= endTime {
		return false, apperrors.BadRequest("window end must be after its start", nil)
	}

	profile, err := s.repo.Get(ctx, doctorID)
	if err != nil {
		return false, fmt.Errorf("failed to get availability profile: %w", err)
	}
	return schedule.IsBookable(profile, day, startTime, endTime), nil
}

func validateProfile(profile *model.AvailabilityProfile) error {
	if len(profile.WorkingHours) != len(model.Weekdays) {
		return apperrors.BadRequest("working hours must cover all seven weekdays", nil)
	}
	for _, day := range model.Weekdays {
		hours, ok := profile.WorkingHours[day]
		if !ok {
			return apperrors.BadRequest(fmt.Sprintf("working hours missing %s", day), nil)
		}
		if !hhmmRe.MatchString(hours.Start) || !hhmmRe.MatchString(hours.End) {
			return apperrors.BadRequest(fmt.Sprintf("working hours for %s must be HH:MM", day), nil)
		}
		if hours.Start >= hours.End {
			return apperrors.BadRequest(fmt.Sprintf("working hours for %s must end after they start", day), nil)
		}
	}

	for i, block := range profile.TimeBlocks {
		if !validDay(block.Day) {
			return apperrors.BadRequest(fmt.Sprintf("time block %d has an unknown weekday", i), nil)
		}
		if !hhmmRe.MatchString(block.StartTime) || !hhmmRe.MatchString(block.EndTime) {
			return apperrors.BadRequest(fmt.Sprintf("time block %d times must be HH:MM", i), nil)
		}
		if block.StartTime >= block.EndTime {
			return apperrors.BadRequest(fmt.Sprintf("time block %d must end after it starts", i), nil)
		}
	}
	return nil
}

func validDay(day string) bool {
	for _, d := range model.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
