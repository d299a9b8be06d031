// Package memory provides in-memory repository implementations, used
// by tests and by the embedded single-process mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
	"github.com/telecare/scheduler/internal/schedule"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

type appointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*model.Appointment
}

func NewAppointmentRepository() repository.AppointmentRepository {
	return &appointmentRepository{
		appointments: make(map[uuid.UUID]*model.Appointment),
	}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	if appointment.Status == model.AppointmentStatusScheduled {
		if err := r.checkConflictsLocked(appointment); err != nil {
			return err
		}
	}

	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apt, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	found := *apt
	return &found, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[appointment.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}

	if appointment.Status == model.AppointmentStatusScheduled {
		if err := r.checkConflictsLocked(appointment); err != nil {
			return err
		}
	}

	appointment.UpdatedAt = time.Now()
	stored := *appointment
	r.appointments[appointment.ID] = &stored
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.appointments, id)
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Appointment
	for _, apt := range r.appointments {
		if filters != nil && !matches(apt, filters) {
			continue
		}
		found := *apt
		out = append(out, &found)
	}
	return out, nil
}

func (r *appointmentRepository) ListForParticipant(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID) ([]*model.Appointment, error) {
	return r.List(ctx, &model.AppointmentFilters{Role: role, ParticipantID: participantID})
}

// checkConflictsLocked enforces the no-double-booking invariant on both
// sides of the appointment. Caller holds the write lock, so the check
// and the subsequent insert are atomic.
func (r *appointmentRepository) checkConflictsLocked(appointment *model.Appointment) error {
	candidate := schedule.Candidate{
		Window:    schedule.Interval{Start: appointment.StartTime, End: appointment.EndTime},
		ExcludeID: appointment.ID,
	}

	var doctorSide, patientSide []*model.Appointment
	for _, apt := range r.appointments {
		if apt.DoctorID == appointment.DoctorID {
			doctorSide = append(doctorSide, apt)
		}
		if apt.PatientID == appointment.PatientID {
			patientSide = append(patientSide, apt)
		}
	}

	if conflicts := schedule.FindConflicts(candidate, doctorSide); len(conflicts) > 0 {
		return apperrors.NewConflict(apperrors.SideDoctor, "doctor has an overlapping appointment", copyAll(conflicts))
	}
	if conflicts := schedule.FindConflicts(candidate, patientSide); len(conflicts) > 0 {
		return apperrors.NewConflict(apperrors.SidePatient, "patient has an overlapping appointment", copyAll(conflicts))
	}
	return nil
}

func matches(apt *model.Appointment, filters *model.AppointmentFilters) bool {
	switch filters.Role {
	case model.RoleDoctor:
		if apt.DoctorID != filters.ParticipantID {
			return false
		}
	case model.RolePatient:
		if apt.PatientID != filters.ParticipantID {
			return false
		}
	}
	if filters.Status != "" && apt.Status != filters.Status {
		return false
	}
	if !filters.From.IsZero() && apt.EndTime.Before(filters.From) {
		return false
	}
	if !filters.To.IsZero() && !apt.StartTime.Before(filters.To) {
		return false
	}
	return true
}

func copyAll(appts []*model.Appointment) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(appts))
	for _, apt := range appts {
		found := *apt
		out = append(out, &found)
	}
	return out
}
