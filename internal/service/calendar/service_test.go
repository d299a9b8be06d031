package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
	"github.com/telecare/scheduler/internal/repository/memory"
	"github.com/telecare/scheduler/internal/schedule"
)

func seedAppointment(t *testing.T, repo repository.AppointmentRepository, doctorID uuid.UUID, start, end time.Time) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		PatientID:   uuid.New(),
		PatientName: "Ada Lovett",
		DoctorID:    doctorID,
		DoctorName:  "Dr. Chen",
		StartTime:   start,
		EndTime:     end,
		Type:        model.AppointmentTypeVideo,
		Status:      model.AppointmentStatusScheduled,
	}
	require.NoError(t, repo.Create(context.Background(), apt))
	return apt
}

func TestMonthProjection(t *testing.T) {
	repo := memory.NewAppointmentRepository()
	svc := NewService(repo)
	doctorID := uuid.New()

	jan20 := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	seedAppointment(t, repo, doctorID, jan20, jan20.Add(30*time.Minute))

	cells, err := svc.Month(context.Background(), model.RoleDoctor, doctorID, jan20)
	require.NoError(t, err)
	require.Len(t, cells, 42)

	var found bool
	for _, cell := range cells {
		if schedule.SameDay(cell.Day, jan20) {
			found = true
			assert.Len(t, cell.Appointments, 1)
		}
	}
	assert.True(t, found)
}

func TestWeekAndDayProjections(t *testing.T) {
	repo := memory.NewAppointmentRepository()
	svc := NewService(repo)
	doctorID := uuid.New()
	ctx := context.Background()

	// Wednesday Jan 22 2025, 10:00-11:00
	wed := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)
	seedAppointment(t, repo, doctorID, wed, wed.Add(time.Hour))

	week, err := svc.Week(ctx, model.RoleDoctor, doctorID, wed)
	require.NoError(t, err)
	require.Len(t, week, 7)
	// Wednesday is the fourth column
	var wedHits int
	for _, group := range week[3].Slots {
		wedHits += len(group.Appointments)
	}
	assert.Equal(t, 2, wedHits) // two 30-minute slots

	day, err := svc.Day(ctx, model.RoleDoctor, doctorID, wed)
	require.NoError(t, err)
	require.Len(t, day.Placements, 1)
	// grid starts at 08:00, appointment at 10:00
	assert.Equal(t, 120, day.Placements[0].OffsetMinutes)
	assert.Equal(t, 60, day.Placements[0].ExtentMinutes)
}

func TestAgendaProjection(t *testing.T) {
	repo := memory.NewAppointmentRepository()
	svc := NewService(repo)
	doctorID := uuid.New()
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

	past := seedAppointment(t, repo, doctorID, now.AddDate(0, 0, -3), now.AddDate(0, 0, -3).Add(30*time.Minute))
	future := seedAppointment(t, repo, doctorID, now.AddDate(0, 0, 2), now.AddDate(0, 0, 2).Add(30*time.Minute))

	agenda, err := svc.Agenda(context.Background(), model.RoleDoctor, doctorID, now)
	require.NoError(t, err)
	require.Len(t, agenda.Past, 1)
	require.Len(t, agenda.Upcoming, 1)
	assert.Equal(t, past.ID, agenda.Past[0].Appointments[0].ID)
	assert.Equal(t, future.ID, agenda.Upcoming[0].Appointments[0].ID)
}

func TestProjectionRoleValidation(t *testing.T) {
	svc := NewService(memory.NewAppointmentRepository())

	_, err := svc.Agenda(context.Background(), "receptionist", uuid.New(), time.Now())
	assert.Error(t, err)
}
