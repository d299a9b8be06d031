package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository/memory"
	"github.com/telecare/scheduler/internal/service/notification"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

func newTestService() *Service {
	return NewService(
		memory.NewAppointmentRepository(),
		memory.NewAvailabilityRepository(),
		notification.Noop(),
		nil,
	)
}

// Monday within default working hours.
func monday(h, m int) time.Time {
	return time.Date(2025, 1, 20, h, m, 0, 0, time.UTC)
}

func bookingReq(doctorID, patientID uuid.UUID, start, end time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:   patientID,
		PatientName: "Ada Lovett",
		DoctorID:    doctorID,
		DoctorName:  "Dr. Chen",
		StartTime:   start,
		EndTime:     end,
		Type:        model.AppointmentTypeVideo,
	}
}

func TestBookAndListRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID, patientID := uuid.New(), uuid.New()

	booked, err := svc.Book(ctx, bookingReq(doctorID, patientID, monday(10, 0), monday(10, 30)))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, booked.Status)

	forDoctor, err := svc.List(ctx, model.RoleDoctor, doctorID)
	require.NoError(t, err)
	require.Len(t, forDoctor, 1)
	assert.Equal(t, booked.ID, forDoctor[0].ID)
	assert.Equal(t, booked.StartTime, forDoctor[0].StartTime)
	assert.Equal(t, booked.EndTime, forDoctor[0].EndTime)
	assert.Equal(t, "Dr. Chen", forDoctor[0].DoctorName)

	forPatient, err := svc.List(ctx, model.RolePatient, patientID)
	require.NoError(t, err)
	require.Len(t, forPatient, 1)
}

func TestBookDoctorConflict(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	first, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	_, err = svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 15), monday(10, 45)))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	details, ok := appErr.Details.(*apperrors.ConflictDetails)
	require.True(t, ok)
	assert.Equal(t, apperrors.SideDoctor, details.Side)

	conflicts, ok := details.Conflicts.([]*model.Appointment)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, first.ID, conflicts[0].ID)
}

func TestBookTouchingBoundarySucceeds(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	_, err = svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 30), monday(11, 0)))
	assert.NoError(t, err)
}

func TestBookPatientSideConflict(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	patientID := uuid.New()

	_, err := svc.Book(ctx, bookingReq(uuid.New(), patientID, monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	// different doctor, same patient, overlapping window
	_, err = svc.Book(ctx, bookingReq(uuid.New(), patientID, monday(10, 15), monday(10, 45)))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	details, ok := appErr.Details.(*apperrors.ConflictDetails)
	require.True(t, ok)
	assert.Equal(t, apperrors.SidePatient, details.Side)
}

func TestBookValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t.Run("in-person requires location", func(t *testing.T) {
		req := bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 30))
		req.Type = model.AppointmentTypeInPerson
		_, err := svc.Book(ctx, req)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

		req.Location = "Clinic B, Room 4"
		_, err = svc.Book(ctx, req)
		assert.NoError(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		req := bookingReq(uuid.New(), uuid.New(), monday(11, 0), monday(10, 0))
		_, err := svc.Book(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	})

	t.Run("recurrence without terminator", func(t *testing.T) {
		req := bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 30))
		req.Recurrence = &model.Recurrence{Pattern: model.RecurrenceWeekly, Interval: 1}
		_, err := svc.Book(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrRecurrenceConfig))
	})
}

func TestBookOutsideWorkingHours(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// default availability template is 9-to-5 weekdays
	_, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(7, 0), monday(7, 30)))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	// Sunday Jan 19 2025
	sunday := time.Date(2025, 1, 19, 10, 0, 0, 0, time.UTC)
	_, err = svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), sunday, sunday.Add(30*time.Minute)))
	assert.Error(t, err)
}

func TestRescheduleToOwnWindowIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	start, end := apt.StartTime, apt.EndTime
	updated, err := svc.Update(ctx, apt.ID, &model.UpdateAppointmentRequest{
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)
	assert.Equal(t, start, updated.StartTime)
	assert.Equal(t, end, updated.EndTime)
	assert.Equal(t, model.AppointmentStatusScheduled, updated.Status)
}

func TestRescheduleConflictRechecked(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)
	second, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(11, 0), monday(11, 30)))
	require.NoError(t, err)

	newStart, newEnd := monday(10, 15), monday(10, 45)
	_, err = svc.Update(ctx, second.ID, &model.UpdateAppointmentRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestRelocatePreservesDuration(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 45)))
	require.NoError(t, err)

	moved, err := svc.Relocate(ctx, apt.ID, monday(14, 0))
	require.NoError(t, err)
	assert.Equal(t, monday(14, 0), moved.StartTime)
	assert.Equal(t, monday(14, 45), moved.EndTime)
}

func TestRelocateIntoConflictRejected(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	_, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(14, 0), monday(14, 30)))
	require.NoError(t, err)
	apt, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	_, err = svc.Relocate(ctx, apt.ID, monday(14, 15))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	// the failed move left the appointment where it was
	current, err := svc.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, monday(10, 0), current.StartTime)
}

func TestStatusTransitions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	completed, err := svc.Complete(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)

	// terminal states admit no further transitions
	_, err = svc.Cancel(ctx, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	_, err = svc.MarkNoShow(ctx, apt.ID)
	assert.Error(t, err)
}

func TestCancelledAppointmentsDoNotBlock(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	doctorID := uuid.New()

	apt, err := svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)

	_, err = svc.Book(ctx, bookingReq(doctorID, uuid.New(), monday(10, 0), monday(10, 30)))
	assert.NoError(t, err)
}

func TestDeleteOnlyCancelled(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	err = svc.Delete(ctx, apt.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	_, err = svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, apt.ID))

	_, err = svc.Get(ctx, apt.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestOccurrencesLazyExpansion(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	count := 3
	req := bookingReq(uuid.New(), uuid.New(), monday(15, 30), monday(16, 0))
	req.Recurrence = &model.Recurrence{Pattern: model.RecurrenceWeekly, Interval: 1, Count: &count}

	apt, err := svc.Book(ctx, req)
	require.NoError(t, err)

	occ, err := svc.Occurrences(ctx, apt.ID)
	require.NoError(t, err)
	require.Len(t, occ, 2)
	assert.Equal(t, monday(16, 0).AddDate(0, 0, 7), occ[0].Start)

	// only the anchor is persisted
	all, err := svc.List(ctx, model.RoleDoctor, apt.DoctorID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// cached second read returns the same windows
	again, err := svc.Occurrences(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, occ, again)
}

func TestOccurrencesNonRecurring(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(10, 0), monday(10, 30)))
	require.NoError(t, err)

	occ, err := svc.Occurrences(ctx, apt.ID)
	require.NoError(t, err)
	assert.Nil(t, occ)
}

func TestFollowUpSuggestion(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq(uuid.New(), uuid.New(), monday(15, 30), monday(16, 0)))
	require.NoError(t, err)

	next, err := svc.FollowUp(ctx, apt.ID, model.RecurrenceWeekly, 2)
	require.NoError(t, err)
	assert.Equal(t, monday(16, 0).AddDate(0, 0, 14), next.Start)
	assert.Equal(t, 30*time.Minute, next.End.Sub(next.Start))
}
