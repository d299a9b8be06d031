package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Terminal reports whether no further transitions are allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

type AppointmentType string

const (
	AppointmentTypeVideo    AppointmentType = "video"
	AppointmentTypePhone    AppointmentType = "phone"
	AppointmentTypeInPerson AppointmentType = "in_person"
)

type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Recurrence describes how an anchor appointment repeats. Exactly one
// of EndDate or Count must be set.
type Recurrence struct {
	Pattern  RecurrencePattern `db:"recurrence_pattern" json:"pattern"`
	Interval int               `db:"recurrence_interval" json:"interval"`
	EndDate  *time.Time        `db:"recurrence_end_date" json:"end_date,omitempty"`
	Count    *int              `db:"recurrence_count" json:"occurrences,omitempty"`
}

type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	PatientName  string            `db:"patient_name" json:"patient_name"`
	PatientEmail string            `db:"patient_email" json:"patient_email,omitempty"`
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	DoctorName   string            `db:"doctor_name" json:"doctor_name"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Type         AppointmentType   `db:"type" json:"type"`
	Location     string            `db:"location" json:"location,omitempty"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	Recurrence   *Recurrence       `db:"-" json:"recurrence,omitempty"`
}

// Duration is the appointment length.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

type CreateAppointmentRequest struct {
	PatientID    uuid.UUID       `json:"patient_id" binding:"required"`
	PatientName  string          `json:"patient_name" binding:"required"`
	PatientEmail string          `json:"patient_email" binding:"omitempty,email"`
	DoctorID     uuid.UUID       `json:"doctor_id" binding:"required"`
	DoctorName   string          `json:"doctor_name" binding:"required"`
	StartTime    time.Time       `json:"start_time" binding:"required"`
	EndTime      time.Time       `json:"end_time" binding:"required,gtfield=StartTime"`
	Type         AppointmentType `json:"type" binding:"required,oneof=video phone in_person"`
	Location     string          `json:"location"`
	Notes        string          `json:"notes" binding:"max=1000"`
	Recurrence   *Recurrence     `json:"recurrence"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     *string    `json:"notes"`
	Location  *string    `json:"location"`
}

type RelocateAppointmentRequest struct {
	NewStart time.Time `json:"new_start" binding:"required"`
}

type AppointmentFilters struct {
	Role          ParticipantRole
	ParticipantID uuid.UUID
	Status        AppointmentStatus
	From          time.Time
	To            time.Time
}
