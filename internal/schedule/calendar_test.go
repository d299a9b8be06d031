package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare/scheduler/internal/model"
)

func TestProjectMonthGroupsAndCaps(t *testing.T) {
	jan20 := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	appts := []*model.Appointment{
		apptAt(model.AppointmentStatusScheduled, at(9, 0), at(9, 30)),
		apptAt(model.AppointmentStatusScheduled, at(10, 0), at(10, 30)),
		apptAt(model.AppointmentStatusScheduled, at(11, 0), at(11, 30)),
		apptAt(model.AppointmentStatusScheduled, at(12, 0), at(12, 30)),
		apptAt(model.AppointmentStatusScheduled, at(13, 0), at(13, 30)),
	}

	cells := ProjectMonth(jan20, appts)
	require.Len(t, cells, 42)

	var day MonthCell
	for _, cell := range cells {
		if SameDay(cell.Day, jan20) {
			day = cell
		}
	}
	require.NotZero(t, day.Day)
	assert.Len(t, day.Appointments, MonthCellCap)
	assert.Equal(t, 2, day.Overflow)
	// capped list keeps chronological order
	assert.Equal(t, at(9, 0), day.Appointments[0].StartTime)

	// a day with no appointments carries an empty cell
	for _, cell := range cells {
		if SameDay(cell.Day, jan20.AddDate(0, 0, 1)) {
			assert.Empty(t, cell.Appointments)
			assert.Zero(t, cell.Overflow)
		}
	}
}

func TestProjectDaySlotGroupsAndPlacements(t *testing.T) {
	day := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	apt := apptAt(model.AppointmentStatusScheduled, at(10, 0), at(11, 0))

	proj := ProjectDay(day, 9, 17, DayViewStep, []*model.Appointment{apt})
	require.Len(t, proj.Slots, 32)

	// the appointment overlaps exactly the four 15-minute slots of
	// its hour; the 11:00 slot does not count (half-open)
	var hit int
	for _, group := range proj.Slots {
		if len(group.Appointments) > 0 {
			hit++
			assert.True(t, group.Slot.Start.Before(at(11, 0)))
			assert.True(t, group.Slot.End.After(at(10, 0)))
		}
	}
	assert.Equal(t, 4, hit)

	require.Len(t, proj.Placements, 1)
	assert.Equal(t, 60, proj.Placements[0].OffsetMinutes)
	assert.Equal(t, 60, proj.Placements[0].ExtentMinutes)
}

func TestProjectWeekCoversSundayToSaturday(t *testing.T) {
	// Wednesday Jan 22 2025 -> week of Sunday Jan 19 to Saturday Jan 25
	wed := time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC)
	week := ProjectWeek(wed, 9, 17, nil)
	require.Len(t, week, 7)
	assert.Equal(t, time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), week[0].Day)
	assert.Equal(t, time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC), week[6].Day)
	for _, dayProj := range week {
		assert.Len(t, dayProj.Slots, 16)
	}
}

func TestProjectAgendaPartition(t *testing.T) {
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

	yesterday := apptAt(model.AppointmentStatusCompleted, at(10, 0).AddDate(0, 0, -1), at(10, 30).AddDate(0, 0, -1))
	lastWeek := apptAt(model.AppointmentStatusCompleted, at(10, 0).AddDate(0, 0, -7), at(10, 30).AddDate(0, 0, -7))
	todayLater := apptAt(model.AppointmentStatusScheduled, at(15, 0), at(15, 30))
	nextDay := apptAt(model.AppointmentStatusScheduled, at(9, 0).AddDate(0, 0, 1), at(9, 30).AddDate(0, 0, 1))

	agenda := ProjectAgenda(now, []*model.Appointment{lastWeek, nextDay, yesterday, todayLater})

	// past: most recent day first, today excluded
	require.Len(t, agenda.Past, 2)
	assert.Equal(t, yesterday.ID, agenda.Past[0].Appointments[0].ID)
	assert.Equal(t, lastWeek.ID, agenda.Past[1].Appointments[0].ID)

	// upcoming: today onward, chronological
	require.Len(t, agenda.Upcoming, 2)
	assert.Equal(t, todayLater.ID, agenda.Upcoming[0].Appointments[0].ID)
	assert.Equal(t, nextDay.ID, agenda.Upcoming[1].Appointments[0].ID)
}

func TestRelocateWindowPreservesDuration(t *testing.T) {
	apt := apptAt(model.AppointmentStatusScheduled, at(10, 0), at(10, 45))

	moved := RelocateWindow(apt, at(14, 0))
	assert.Equal(t, at(14, 0), moved.Start)
	assert.Equal(t, at(14, 45), moved.End)
}
