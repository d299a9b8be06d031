package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypeBooked      NotificationType = "booked"
	NotificationTypeRescheduled NotificationType = "rescheduled"
	NotificationTypeCancelled   NotificationType = "cancelled"
)

// Notification is the payload handed to the notification sink.
// Delivery is best-effort and never blocks an appointment mutation.
type Notification struct {
	ID            uuid.UUID        `json:"id"`
	RecipientID   uuid.UUID        `json:"recipient_id"`
	AppointmentID uuid.UUID        `json:"appointment_id"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Link          string           `json:"link,omitempty"`
	Priority      string           `json:"priority,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
