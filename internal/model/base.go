package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ParticipantRole identifies which side of an appointment a user is on.
type ParticipantRole string

const (
	RoleDoctor  ParticipantRole = "doctor"
	RolePatient ParticipantRole = "patient"
)

func (r ParticipantRole) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}
