package schedule

import (
	"sort"
	"time"

	"github.com/telecare/scheduler/internal/model"
)

// MonthCellCap is the number of appointments a month cell displays
// before collapsing the rest into an overflow count.
const MonthCellCap = 3

// Grid steps for the week and day views.
const (
	WeekViewStep = 30 * time.Minute
	DayViewStep  = 15 * time.Minute
)

// MonthCell is one day of the 42-cell month grid.
type MonthCell struct {
	Day          time.Time            `json:"day"`
	Appointments []*model.Appointment `json:"appointments"`
	Overflow     int                  `json:"overflow"`
}

// ProjectMonth groups appointments by calendar day across the month
// grid. Each cell carries at most MonthCellCap appointments plus the
// count of those hidden.
func ProjectMonth(month time.Time, appointments []*model.Appointment) []MonthCell {
	byDay := make(map[time.Time][]*model.Appointment)
	for _, apt := range appointments {
		key := DayStart(apt.StartTime)
		byDay[key] = append(byDay[key], apt)
	}

	cells := make([]MonthCell, 0, 42)
	for _, day := range MonthGrid(month) {
		dayAppts := byDay[DayStart(day)]
		sortByStart(dayAppts)

		cell := MonthCell{Day: day, Appointments: dayAppts}
		if len(dayAppts) > MonthCellCap {
			cell.Appointments = dayAppts[:MonthCellCap]
			cell.Overflow = len(dayAppts) - MonthCellCap
		}
		cells = append(cells, cell)
	}
	return cells
}

// Placement positions one appointment on a time grid: offset from the
// grid start and extent, both in minutes, so rendering is a linear map
// to pixels.
type Placement struct {
	Appointment   *model.Appointment `json:"appointment"`
	OffsetMinutes int                `json:"offset_minutes"`
	ExtentMinutes int                `json:"extent_minutes"`
}

// SlotGroup is one grid slot and the appointments overlapping it.
type SlotGroup struct {
	Slot         Slot                 `json:"slot"`
	Appointments []*model.Appointment `json:"appointments"`
}

// DayProjection is the full per-slot grouping for one day column of the
// week or day view.
type DayProjection struct {
	Day        time.Time   `json:"day"`
	Slots      []SlotGroup `json:"slots"`
	Placements []Placement `json:"placements"`
}

// ProjectDay builds the slot groupings and placements for a single day
// column. startHour/endHour bound the grid; step is WeekViewStep or
// DayViewStep depending on the view.
func ProjectDay(day time.Time, startHour, endHour int, step time.Duration, appointments []*model.Appointment) DayProjection {
	slots := GenerateSlots(day, startHour, endHour, step)
	proj := DayProjection{Day: DayStart(day)}
	if len(slots) == 0 {
		return proj
	}
	gridStart := slots[0].Start

	var dayAppts []*model.Appointment
	for _, apt := range appointments {
		if SameDay(apt.StartTime, day) {
			dayAppts = append(dayAppts, apt)
		}
	}
	sortByStart(dayAppts)

	for _, slot := range slots {
		group := SlotGroup{Slot: slot}
		for _, apt := range dayAppts {
			if Overlaps(slot.Interval(), Interval{Start: apt.StartTime, End: apt.EndTime}) {
				group.Appointments = append(group.Appointments, apt)
			}
		}
		proj.Slots = append(proj.Slots, group)
	}

	for _, apt := range dayAppts {
		proj.Placements = append(proj.Placements, Placement{
			Appointment:   apt,
			OffsetMinutes: int(apt.StartTime.Sub(gridStart).Minutes()),
			ExtentMinutes: int(apt.EndTime.Sub(apt.StartTime).Minutes()),
		})
	}
	return proj
}

// ProjectWeek builds one DayProjection per day of the week containing
// the given date, Sunday first.
func ProjectWeek(date time.Time, startHour, endHour int, appointments []*model.Appointment) []DayProjection {
	weekStart := DayStart(date).AddDate(0, 0, -int(date.Weekday()))
	projections := make([]DayProjection, 0, 7)
	for d := 0; d < 7; d++ {
		day := weekStart.AddDate(0, 0, d)
		projections = append(projections, ProjectDay(day, startHour, endHour, WeekViewStep, appointments))
	}
	return projections
}

// DayGroup is one agenda day with its appointments in chronological
// order.
type DayGroup struct {
	Day          time.Time            `json:"day"`
	Appointments []*model.Appointment `json:"appointments"`
}

// Agenda partitions appointments around "today": Past holds days before
// today, most recent day first; Upcoming holds today and later,
// chronological.
type Agenda struct {
	Past     []DayGroup `json:"past"`
	Upcoming []DayGroup `json:"upcoming"`
}

// ProjectAgenda builds the agenda view relative to now.
func ProjectAgenda(now time.Time, appointments []*model.Appointment) Agenda {
	today := DayStart(now)

	byDay := make(map[time.Time][]*model.Appointment)
	for _, apt := range appointments {
		key := DayStart(apt.StartTime)
		byDay[key] = append(byDay[key], apt)
	}

	var past, upcoming []DayGroup
	for day, appts := range byDay {
		sortByStart(appts)
		group := DayGroup{Day: day, Appointments: appts}
		if day.Before(today) {
			past = append(past, group)
		} else {
			upcoming = append(upcoming, group)
		}
	}

	sort.Slice(past, func(i, j int) bool { return past[i].Day.After(past[j].Day) })
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Day.Before(upcoming[j].Day) })

	return Agenda{Past: past, Upcoming: upcoming}
}

// RelocateWindow computes the duration-preserving target window for a
// drag move: the new end is the new start plus the old duration.
func RelocateWindow(apt *model.Appointment, newStart time.Time) Interval {
	return Interval{Start: newStart, End: newStart.Add(apt.Duration())}
}

func sortByStart(appts []*model.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		return appts[i].StartTime.Before(appts[j].StartTime)
	})
}
