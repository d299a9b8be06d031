package schedule

import (
	"time"

	"github.com/telecare/scheduler/internal/model"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

// MaxOccurrences caps expansion regardless of the rule's own
// terminator, as a guard against runaway series.
const MaxOccurrences = 365

// ValidateRecurrence rejects rules the expander cannot honor: a
// non-positive interval, an unknown pattern, or a rule with neither an
// end date nor an occurrence count.
func ValidateRecurrence(rule *model.Recurrence, anchorEnd time.Time) error {
	if rule == nil {
		return nil
	}
	switch rule.Pattern {
	case model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly:
	default:
		return apperrors.NewRecurrenceConfig("unknown recurrence pattern")
	}
	if rule.Interval < 1 {
		return apperrors.NewRecurrenceConfig("recurrence interval must be positive")
	}
	if rule.EndDate == nil && rule.Count == nil {
		return apperrors.NewRecurrenceConfig("recurrence requires an end date or an occurrence count")
	}
	if rule.Count != nil && *rule.Count < 1 {
		return apperrors.NewRecurrenceConfig("occurrence count must be positive")
	}
	if rule.EndDate != nil && rule.EndDate.Before(anchorEnd) {
		return apperrors.NewRecurrenceConfig("recurrence end date precedes the anchor")
	}
	return nil
}

// ExpandRecurrence derives the occurrence windows that follow an anchor
// appointment. Stepping starts from the anchor's end, not its start:
// follow-ups are measured from when the prior visit concluded. Each
// occurrence keeps the anchor's duration.
//
// A rule with Count = N yields N-1 derived occurrences; the anchor
// itself is the first. A rule with an end date stops before the first
// occurrence whose start would land after it. Monthly stepping clamps
// to the last valid day of the target month (Jan 31 + 1 month = Feb 28
// or 29); each occurrence is measured from the anchor, so the anchor's
// day of month is restored whenever the target month is long enough
// (Jan 31 → Feb 28 → Mar 31).
func ExpandRecurrence(anchor Interval, rule *model.Recurrence) ([]Interval, error) {
	if err := ValidateRecurrence(rule, anchor.End); err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, nil
	}

	duration := anchor.End.Sub(anchor.Start)
	remaining := MaxOccurrences
	if rule.Count != nil {
		remaining = *rule.Count - 1
	}

	var out []Interval
	for step := 1; len(out) < remaining; step++ {
		start := advance(anchor.End, rule.Pattern, step*rule.Interval)
		if rule.EndDate != nil && start.After(*rule.EndDate) {
			break
		}
		out = append(out, Interval{Start: start, End: start.Add(duration)})
	}
	return out, nil
}

// NextOccurrence returns the single next window after the anchor, used
// for follow-up suggestions.
func NextOccurrence(anchor Interval, pattern model.RecurrencePattern, interval int) (Interval, error) {
	// Count=2 is the anchor plus the one derived window we want.
	two := 2
	rule := &model.Recurrence{Pattern: pattern, Interval: interval, Count: &two}
	occ, err := ExpandRecurrence(anchor, rule)
	if err != nil {
		return Interval{}, err
	}
	return occ[0], nil
}

func advance(t time.Time, pattern model.RecurrencePattern, interval int) time.Time {
	switch pattern {
	case model.RecurrenceDaily:
		return t.AddDate(0, 0, interval)
	case model.RecurrenceWeekly:
		return t.AddDate(0, 0, 7*interval)
	case model.RecurrenceMonthly:
		return addMonthsClamped(t, interval)
	}
	return t
}

// addMonthsClamped steps by calendar months, clamping the day of month
// when the target month is shorter than the source day.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysInMonth(target.Year(), target.Month())
	if day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
