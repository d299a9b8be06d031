// Package schedule holds the scheduling core: interval math, calendar
// grids, recurrence expansion, availability resolution and conflict
// detection. Everything here is pure and store-agnostic; persistence
// and transport live in the surrounding layers.
package schedule

import (
	"time"
)

// Interval is a half-open time window [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether a and b intersect. Touching intervals
// (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Slot is a fixed-width grid cell used for calendar rendering and as a
// drop-target address.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Interval returns the slot's window.
func (s Slot) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// GenerateSlots produces the fixed-width slots covering
// [startHour:00, endHour:00) on the given day. The week view uses a
// 30-minute step, the day view 15 minutes.
func GenerateSlots(day time.Time, startHour, endHour int, step time.Duration) []Slot {
	if step <= 0 || endHour <= startHour {
		return nil
	}
	gridStart := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
	gridEnd := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, day.Location())

	var slots []Slot
	for t := gridStart; t.Before(gridEnd); t = t.Add(step) {
		slots = append(slots, Slot{Start: t, End: t.Add(step)})
	}
	return slots
}

// MonthGrid returns the 42-cell (6x7) day grid for the month containing
// the given date: six full weeks starting from the Sunday on or before
// the 1st, always ending on a Saturday past the month's last day.
func MonthGrid(month time.Time) []time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]time.Time, 0, 42)
	for d := 0; d < 42; d++ {
		days = append(days, gridStart.AddDate(0, 0, d))
	}
	return days
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
