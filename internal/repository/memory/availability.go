package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
)

type availabilityRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*model.AvailabilityProfile
}

func NewAvailabilityRepository() repository.AvailabilityRepository {
	return &availabilityRepository{
		profiles: make(map[uuid.UUID]*model.AvailabilityProfile),
	}
}

func (r *availabilityRepository) Get(ctx context.Context, doctorID uuid.UUID) (*model.AvailabilityProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[doctorID]
	if !ok {
		return &model.AvailabilityProfile{
			DoctorID:     doctorID,
			WorkingHours: model.DefaultWorkingHours(),
		}, nil
	}

	found := *profile
	found.TimeBlocks = append([]model.TimeBlock(nil), profile.TimeBlocks...)
	found.WorkingHours = make(map[string]model.DayHours, len(profile.WorkingHours))
	for day, hours := range profile.WorkingHours {
		found.WorkingHours[day] = hours
	}
	return &found, nil
}

func (r *availabilityRepository) Upsert(ctx context.Context, profile *model.AvailabilityProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *profile
	r.profiles[profile.DoctorID] = &stored
	return nil
}
