package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository/memory"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

func newTestService() *Service {
	return NewService(memory.NewAvailabilityRepository())
}

func TestGetReturnsDefaultTemplate(t *testing.T) {
	svc := newTestService()

	profile, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Len(t, profile.WorkingHours, 7)
	assert.True(t, profile.WorkingHours["monday"].Available)
	assert.False(t, profile.WorkingHours["saturday"].Available)
}

func TestUpdateAndCheckWindow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	hours := model.DefaultWorkingHours()
	_, err := svc.Update(ctx, doctorID, &model.UpdateAvailabilityRequest{
		WorkingHours: hours,
		TimeBlocks: []model.TimeBlock{
			{Day: "monday", StartTime: "12:00", EndTime: "13:00", Available: false},
		},
	})
	require.NoError(t, err)

	bookable, err := svc.CheckWindow(ctx, doctorID, "monday", "12:15", "12:45")
	require.NoError(t, err)
	assert.False(t, bookable)

	bookable, err = svc.CheckWindow(ctx, doctorID, "monday", "13:00", "13:30")
	require.NoError(t, err)
	assert.True(t, bookable)
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	t.Run("missing weekday", func(t *testing.T) {
		hours := model.DefaultWorkingHours()
		delete(hours, "friday")
		_, err := svc.Update(ctx, doctorID, &model.UpdateAvailabilityRequest{WorkingHours: hours})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("malformed time", func(t *testing.T) {
		hours := model.DefaultWorkingHours()
		hours["monday"] = model.DayHours{Start: "9am", End: "17:00", Available: true}
		_, err := svc.Update(ctx, doctorID, &model.UpdateAvailabilityRequest{WorkingHours: hours})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("inverted block", func(t *testing.T) {
		_, err := svc.Update(ctx, doctorID, &model.UpdateAvailabilityRequest{
			WorkingHours: model.DefaultWorkingHours(),
			TimeBlocks: []model.TimeBlock{
				{Day: "monday", StartTime: "14:00", EndTime: "13:00", Available: false},
			},
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})
}

func TestCheckWindowValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CheckWindow(ctx, uuid.New(), "monday", "10:61", "11:00")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	_, err = svc.CheckWindow(ctx, uuid.New(), "someday", "10:00", "11:00")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	_, err = svc.CheckWindow(ctx, uuid.New(), "monday", "11:00", "10:00")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}
