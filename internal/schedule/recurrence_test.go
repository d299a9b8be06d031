package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare/scheduler/internal/model"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

func intp(v int) *int { return &v }

func timep(t time.Time) *time.Time { return &t }

func TestExpandRecurrenceWeeklyByCount(t *testing.T) {
	// Anchor ends Monday 2025-01-20 16:00, 30 minute visit.
	anchor := Interval{
		Start: time.Date(2025, 1, 20, 15, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 20, 16, 0, 0, 0, time.UTC),
	}
	rule := &model.Recurrence{Pattern: model.RecurrenceWeekly, Interval: 1, Count: intp(3)}

	occ, err := ExpandRecurrence(anchor, rule)
	require.NoError(t, err)

	// Count=3 includes the anchor, so two derived occurrences, each
	// stepped from the anchor's end.
	require.Len(t, occ, 2)
	assert.Equal(t, time.Date(2025, 1, 27, 16, 0, 0, 0, time.UTC), occ[0].Start)
	assert.Equal(t, time.Date(2025, 1, 27, 16, 30, 0, 0, time.UTC), occ[0].End)
	assert.Equal(t, time.Date(2025, 2, 3, 16, 0, 0, 0, time.UTC), occ[1].Start)
}

func TestExpandRecurrenceDailyByEndDate(t *testing.T) {
	anchor := Interval{
		Start: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 1, 9, 45, 0, 0, time.UTC),
	}
	rule := &model.Recurrence{
		Pattern:  model.RecurrenceDaily,
		Interval: 2,
		EndDate:  timep(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)),
	}

	occ, err := ExpandRecurrence(anchor, rule)
	require.NoError(t, err)

	// Steps land on Mar 3, 5, 7 at 09:45; Mar 9 exceeds the end date.
	require.Len(t, occ, 3)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 45, 0, 0, time.UTC), occ[0].Start)
	assert.Equal(t, time.Date(2025, 3, 7, 9, 45, 0, 0, time.UTC), occ[2].Start)
	for _, o := range occ {
		assert.Equal(t, 45*time.Minute, o.End.Sub(o.Start))
	}
}

func TestExpandRecurrenceMonthlyClampsDay(t *testing.T) {
	// Anchor ends Jan 31; monthly stepping clamps to the last valid
	// day of shorter months.
	anchor := Interval{
		Start: time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 10, 30, 0, 0, time.UTC),
	}
	rule := &model.Recurrence{Pattern: model.RecurrenceMonthly, Interval: 1, Count: intp(4)}

	occ, err := ExpandRecurrence(anchor, rule)
	require.NoError(t, err)
	require.Len(t, occ, 3)
	assert.Equal(t, time.Date(2025, 2, 28, 10, 30, 0, 0, time.UTC), occ[0].Start)
	assert.Equal(t, time.Date(2025, 3, 31, 10, 30, 0, 0, time.UTC), occ[1].Start)
	assert.Equal(t, time.Date(2025, 4, 30, 10, 30, 0, 0, time.UTC), occ[2].Start)
}

func TestExpandRecurrenceMonthlyRestoresDayAfterClamp(t *testing.T) {
	// A clamped month must not shorten the rest of the series: each
	// occurrence is measured from the anchor, so Feb's clamp to the
	// 28th still yields Mar 31 and Apr 30, not Mar 28 and Apr 28.
	anchor := Interval{
		Start: time.Date(2024, 10, 31, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 10, 31, 9, 45, 0, 0, time.UTC),
	}
	rule := &model.Recurrence{Pattern: model.RecurrenceMonthly, Interval: 1, Count: intp(6)}

	occ, err := ExpandRecurrence(anchor, rule)
	require.NoError(t, err)
	require.Len(t, occ, 5)
	assert.Equal(t, time.Date(2024, 11, 30, 9, 45, 0, 0, time.UTC), occ[0].Start)
	assert.Equal(t, time.Date(2024, 12, 31, 9, 45, 0, 0, time.UTC), occ[1].Start)
	assert.Equal(t, time.Date(2025, 1, 31, 9, 45, 0, 0, time.UTC), occ[2].Start)
	assert.Equal(t, time.Date(2025, 2, 28, 9, 45, 0, 0, time.UTC), occ[3].Start)
	assert.Equal(t, time.Date(2025, 3, 31, 9, 45, 0, 0, time.UTC), occ[4].Start)
}

func TestExpandRecurrenceDeterministic(t *testing.T) {
	anchor := Interval{
		Start: time.Date(2025, 5, 5, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 5, 5, 8, 30, 0, 0, time.UTC),
	}
	rule := &model.Recurrence{Pattern: model.RecurrenceDaily, Interval: 1, Count: intp(5)}

	first, err := ExpandRecurrence(anchor, rule)
	require.NoError(t, err)
	second, err := ExpandRecurrence(anchor, rule)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateRecurrence(t *testing.T) {
	anchorEnd := time.Date(2025, 1, 20, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule *model.Recurrence
		ok   bool
	}{
		{"nil rule is fine", nil, true},
		{"count terminator", &model.Recurrence{Pattern: model.RecurrenceDaily, Interval: 1, Count: intp(3)}, true},
		{"no terminator", &model.Recurrence{Pattern: model.RecurrenceDaily, Interval: 1}, false},
		{"zero interval", &model.Recurrence{Pattern: model.RecurrenceWeekly, Interval: 0, Count: intp(3)}, false},
		{"zero count", &model.Recurrence{Pattern: model.RecurrenceWeekly, Interval: 1, Count: intp(0)}, false},
		{"unknown pattern", &model.Recurrence{Pattern: "yearly", Interval: 1, Count: intp(3)}, false},
		{"end date before anchor", &model.Recurrence{Pattern: model.RecurrenceDaily, Interval: 1, EndDate: timep(anchorEnd.AddDate(0, 0, -1))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecurrence(tt.rule, anchorEnd)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, apperrors.ErrRecurrenceConfig))
			}
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	anchor := Interval{
		Start: time.Date(2025, 1, 20, 15, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 20, 16, 0, 0, 0, time.UTC),
	}

	next, err := NextOccurrence(anchor, model.RecurrenceWeekly, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 3, 16, 0, 0, 0, time.UTC), next.Start)
	assert.Equal(t, 30*time.Minute, next.End.Sub(next.Start))
}
