package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/email"
	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
	"github.com/telecare/scheduler/internal/service/notification"
	"github.com/telecare/scheduler/pkg/logger"
	"github.com/telecare/scheduler/pkg/metrics"
)

// ReminderWorker periodically scans for appointments starting within the
// lead window and publishes a reminder once per appointment.
type ReminderWorker struct {
	repo     repository.AppointmentRepository
	notifier notification.Service
	emails   email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics

	lead     time.Duration
	interval time.Duration

	reminded map[uuid.UUID]time.Time
}

func NewReminderWorker(
	repo repository.AppointmentRepository,
	notifier notification.Service,
	emails email.Service,
	logger *logger.Logger,
	m *metrics.Metrics,
	lead, interval time.Duration,
) *ReminderWorker {
	return &ReminderWorker{
		repo:     repo,
		notifier: notifier,
		emails:   emails,
		logger:   logger,
		metrics:  m,
		lead:     lead,
		interval: interval,
		reminded: make(map[uuid.UUID]time.Time),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.scan(ctx); err != nil {
				w.logger.Error(err, "reminder scan failed")
			}
		}
	}
}

func (w *ReminderWorker) scan(ctx context.Context) error {
	now := time.Now().UTC()

	appointments, err := w.repo.List(ctx, &model.AppointmentFilters{
		Status: model.AppointmentStatusScheduled,
		From:   now,
		To:     now.Add(w.lead),
	})
	if err != nil {
		return fmt.Errorf("failed to list upcoming appointments: %w", err)
	}

	w.evictStale(now)

	sent := 0
	for _, apt := range appointments {
		if start, ok := w.reminded[apt.ID]; ok && start.Equal(apt.StartTime) {
			continue
		}
		if err := w.remind(ctx, apt); err != nil {
			w.logger.Error(err, "failed to publish reminder", "appointment_id", apt.ID.String())
			if w.metrics != nil {
				w.metrics.RemindersFailed.Inc()
			}
			continue
		}
		w.reminded[apt.ID] = apt.StartTime
		if w.metrics != nil {
			w.metrics.RemindersPublished.Inc()
		}
		sent++
	}

	if sent > 0 {
		w.logger.Info("published appointment reminders", "count", sent)
	}
	return nil
}

func (w *ReminderWorker) remind(ctx context.Context, apt *model.Appointment) error {
	when := apt.StartTime.Format("Mon Jan 2 15:04 MST")

	for _, recipient := range []uuid.UUID{apt.PatientID, apt.DoctorID} {
		w.notifier.Notify(ctx, &model.Notification{
			ID:            uuid.New(),
			RecipientID:   recipient,
			AppointmentID: apt.ID,
			Type:          model.NotificationTypeReminder,
			Title:         "Upcoming appointment",
			Message:       fmt.Sprintf("Appointment with %s at %s", apt.DoctorName, when),
			CreatedAt:     time.Now().UTC(),
		})
	}

	if w.emails != nil && apt.PatientEmail != "" {
		if err := w.emails.SendReminder(ctx, apt.PatientEmail, apt.PatientName, when); err != nil {
			return fmt.Errorf("failed to send reminder email: %w", err)
		}
	}
	return nil
}

// evictStale drops entries for appointments whose start has passed so the
// map does not grow without bound.
func (w *ReminderWorker) evictStale(now time.Time) {
	for id, start := range w.reminded {
		if start.Before(now) {
			delete(w.reminded, id)
		}
	}
}
