package schedule

import (
	"github.com/telecare/scheduler/internal/model"
)

// IsBookable answers whether the window [startTime, endTime) on the
// given weekday is open for booking under the profile. Times are
// "HH:MM" strings; the fixed format makes string comparison equivalent
// to time comparison within a day.
//
// Resolution order:
//  1. the weekday must be marked available,
//  2. the window must sit fully inside working hours,
//  3. the first time block (in list order) overlapping the window
//     decides the outcome via its own Available flag,
//  4. with no matching block the window is bookable.
func IsBookable(profile *model.AvailabilityProfile, day, startTime, endTime string) bool {
	hours, ok := profile.WorkingHours[day]
	if !ok || !hours.Available {
		return false
	}

	if startTime < hours.Start || endTime > hours.End {
		return false
	}

	for _, block := range profile.TimeBlocks {
		if block.Day != day {
			continue
		}
		if startTime < block.EndTime && block.StartTime < endTime {
			return block.Available
		}
	}

	return true
}
