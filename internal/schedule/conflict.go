package schedule

import (
	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
)

// Candidate is a proposed appointment window being checked against the
// existing set. ExcludeID is the appointment's own id on update paths
// so a record never conflicts with itself.
type Candidate struct {
	Window    Interval
	ExcludeID uuid.UUID
}

// FindConflicts returns every scheduled appointment in existing whose
// window overlaps the candidate's. Completed, cancelled and no-show
// appointments never block.
func FindConflicts(candidate Candidate, existing []*model.Appointment) []*model.Appointment {
	var conflicts []*model.Appointment
	for _, apt := range existing {
		if apt.ID == candidate.ExcludeID {
			continue
		}
		if apt.Status != model.AppointmentStatusScheduled {
			continue
		}
		if Overlaps(candidate.Window, Interval{Start: apt.StartTime, End: apt.EndTime}) {
			conflicts = append(conflicts, apt)
		}
	}
	return conflicts
}
