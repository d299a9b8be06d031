package model

import (
	"github.com/google/uuid"
)

// Weekdays holds the canonical weekday keys used by WorkingHours,
// in calendar order.
var Weekdays = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// DayHours is a provider's default availability for one weekday.
// Start and End are 24-hour "HH:MM" strings, comparable lexicographically.
type DayHours struct {
	Start     string `db:"start_time" json:"start" binding:"required,hhmm"`
	End       string `db:"end_time" json:"end" binding:"required,hhmm"`
	Available bool   `db:"available" json:"available"`
}

// TimeBlock is a per-day override layered on top of working hours.
// Available=false carves out unavailability inside working hours;
// Available=true opens a window outside them. List order matters:
// the first block overlapping a request wins.
type TimeBlock struct {
	Day       string `db:"day" json:"day" binding:"required"`
	StartTime string `db:"block_start" json:"start_time" binding:"required,hhmm"`
	EndTime   string `db:"block_end" json:"end_time" binding:"required,hhmm"`
	Available bool   `db:"available" json:"is_available"`
}

// AvailabilityProfile is a doctor's weekly template plus overrides.
// WorkingHours always has exactly the seven canonical weekday keys.
type AvailabilityProfile struct {
	DoctorID     uuid.UUID           `json:"doctor_id"`
	WorkingHours map[string]DayHours `json:"working_hours"`
	TimeBlocks   []TimeBlock         `json:"time_blocks"`
}

// DefaultWorkingHours returns a 9-to-5 weekday template.
func DefaultWorkingHours() map[string]DayHours {
	hours := make(map[string]DayHours, len(Weekdays))
	for _, day := range Weekdays {
		weekend := day == "saturday" || day == "sunday"
		hours[day] = DayHours{Start: "09:00", End: "17:00", Available: !weekend}
	}
	return hours
}

type UpdateAvailabilityRequest struct {
	WorkingHours map[string]DayHours `json:"working_hours" binding:"required,dive"`
	TimeBlocks   []TimeBlock         `json:"time_blocks" binding:"omitempty,dive"`
}
