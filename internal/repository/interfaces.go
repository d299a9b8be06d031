package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the mutation surface for appointments.
	// Create and Update are conflict-checked: a write that would give
	// a doctor or patient two overlapping scheduled appointments
	// fails with a conflict error carrying the overlapping set, and
	// check-then-write is atomic per store.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForParticipant(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID) ([]*model.Appointment, error)
	}

	// AvailabilityRepository stores per-doctor weekly templates and
	// override blocks. Get returns the default template for doctors
	// without a stored profile.
	AvailabilityRepository interface {
		Get(ctx context.Context, doctorID uuid.UUID) (*model.AvailabilityProfile, error)
		Upsert(ctx context.Context, profile *model.AvailabilityProfile) error
	}
)
