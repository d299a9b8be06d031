package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/repository"
	"github.com/telecare/scheduler/internal/schedule"
	"github.com/telecare/scheduler/internal/service/notification"
	apperrors "github.com/telecare/scheduler/pkg/errors"
	"github.com/telecare/scheduler/pkg/metrics"
)

// Business rules for booking windows.
const (
	MinAppointmentDuration = 15 * time.Minute
	MaxAppointmentDuration = 4 * time.Hour
)

// Recurrence expansions are memoized per anchor; reschedules bust the
// entry by id.
const (
	expansionCacheTTL     = 10 * time.Minute
	expansionCacheCleanup = 30 * time.Minute
)

type Service struct {
	repo       repository.AppointmentRepository
	availRepo  repository.AvailabilityRepository
	notifier   notification.Service
	metrics    *metrics.Metrics
	expansions *gocache.Cache
}

func NewService(repo repository.AppointmentRepository, availRepo repository.AvailabilityRepository, notifier notification.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:       repo,
		availRepo:  availRepo,
		notifier:   notifier,
		metrics:    m,
		expansions: gocache.New(expansionCacheTTL, expansionCacheCleanup),
	}
}

func (s *Service) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt := &model.Appointment{
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		DoctorID:     req.DoctorID,
		DoctorName:   req.DoctorName,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Type:         req.Type,
		Location:     req.Location,
		Status:       model.AppointmentStatusScheduled,
		Notes:        req.Notes,
		Recurrence:   req.Recurrence,
	}
	apt.ID = uuid.New()

	if err := s.validateAppointment(apt); err != nil {
		return nil, err
	}

	if err := s.checkAvailability(ctx, apt.DoctorID, apt.StartTime, apt.EndTime); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		s.countConflict(err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}

	s.notifyBoth(ctx, apt, model.NotificationTypeBooked, "Appointment booked")
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID) ([]*model.Appointment, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest("unknown participant role", nil)
	}
	appointments, err := s.repo.ListForParticipant(ctx, role, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Update patches notes, location and, when both times move, the
// appointment window. A window change is a reschedule: it is
// conflict-rechecked at the store and the recurrence expansion cache
// entry for the anchor is dropped.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status.Terminal() {
		return nil, apperrors.BadRequest(fmt.Sprintf("cannot modify a %s appointment", apt.Status), nil)
	}

	rescheduled := false
	if req.StartTime != nil || req.EndTime != nil {
		if req.StartTime == nil || req.EndTime == nil {
			return nil, apperrors.BadRequest("start_time and end_time must be updated together", nil)
		}
		apt.StartTime = *req.StartTime
		apt.EndTime = *req.EndTime
		rescheduled = true
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.Location != nil {
		apt.Location = *req.Location
	}

	if err := s.validateAppointment(apt); err != nil {
		return nil, err
	}
	if rescheduled {
		if err := s.checkAvailability(ctx, apt.DoctorID, apt.StartTime, apt.EndTime); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		s.countConflict(err)
		return nil, err
	}

	if rescheduled {
		s.expansions.Delete(id.String())
		s.notifyBoth(ctx, apt, model.NotificationTypeRescheduled, "Appointment rescheduled")
	}
	return apt, nil
}

// Relocate moves an appointment to a new start, preserving its
// duration. This is the drag-and-drop path reduced to one atomic
// operation.
func (s *Service) Relocate(ctx context.Context, id uuid.UUID, newStart time.Time) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.BadRequest(fmt.Sprintf("cannot move a %s appointment", apt.Status), nil)
	}

	window := schedule.RelocateWindow(apt, newStart)
	apt.StartTime = window.Start
	apt.EndTime = window.End

	if err := s.checkAvailability(ctx, apt.DoctorID, apt.StartTime, apt.EndTime); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		s.countConflict(err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BookingsRelocated.Inc()
	}

	s.expansions.Delete(id.String())
	s.notifyBoth(ctx, apt, model.NotificationTypeRescheduled, "Appointment moved")
	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.transition(ctx, id, model.AppointmentStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.notifyBoth(ctx, apt, model.NotificationTypeCancelled, "Appointment cancelled")
	return apt, nil
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCompleted)
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusNoShow)
}

// transition enforces the status state machine: the only legal moves
// are out of scheduled, into a terminal state.
func (s *Service) transition(ctx context.Context, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.BadRequest(fmt.Sprintf("cannot %s a %s appointment", transitionVerb(to), apt.Status), nil)
	}

	apt.Status = to
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// Delete removes a record outright. History is kept for everything
// except already-cancelled appointments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if apt.Status != model.AppointmentStatusCancelled {
		return apperrors.BadRequest("can only delete cancelled appointments", nil)
	}
	return s.repo.Delete(ctx, id)
}

// Occurrences resolves the derived windows of a recurring appointment.
// Only the anchor is persisted; expansion is lazy and memoized.
func (s *Service) Occurrences(ctx context.Context, id uuid.UUID) ([]schedule.Interval, error) {
	if cached, ok := s.expansions.Get(id.String()); ok {
		return cached.([]schedule.Interval), nil
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Recurrence == nil {
		return nil, nil
	}

	anchor := schedule.Interval{Start: apt.StartTime, End: apt.EndTime}
	occurrences, err := schedule.ExpandRecurrence(anchor, apt.Recurrence)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecurrenceExpanded.Inc()
	}

	s.expansions.Set(id.String(), occurrences, gocache.DefaultExpiration)
	return occurrences, nil
}

// FollowUp suggests the next visit window, stepped from the end of the
// given appointment.
func (s *Service) FollowUp(ctx context.Context, id uuid.UUID, pattern model.RecurrencePattern, interval int) (*schedule.Interval, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	anchor := schedule.Interval{Start: apt.StartTime, End: apt.EndTime}
	next, err := schedule.NextOccurrence(anchor, pattern, interval)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) validateAppointment(apt *model.Appointment) error {
	if apt.PatientID == uuid.Nil {
		return apperrors.BadRequest("patient ID is required", nil)
	}
	if apt.DoctorID == uuid.Nil {
		return apperrors.BadRequest("doctor ID is required", nil)
	}
	if !apt.EndTime.After(apt.StartTime) {
		return apperrors.BadRequest("appointment end must be after its start", nil)
	}
	if apt.Type == model.AppointmentTypeInPerson && strings.TrimSpace(apt.Location) == "" {
		return apperrors.BadRequest("in-person appointments require a location", nil)
	}

	duration := apt.EndTime.Sub(apt.StartTime)
	if duration < MinAppointmentDuration || duration > MaxAppointmentDuration {
		return apperrors.BadRequest(
			fmt.Sprintf("appointment duration must be between %v and %v", MinAppointmentDuration, MaxAppointmentDuration), nil)
	}

	return schedule.ValidateRecurrence(apt.Recurrence, apt.EndTime)
}

func (s *Service) checkAvailability(ctx context.Context, doctorID uuid.UUID, start, end time.Time) error {
	if s.availRepo == nil {
		return nil
	}
	if !schedule.SameDay(start, end) {
		return apperrors.BadRequest("appointments must start and end on the same day", nil)
	}

	profile, err := s.availRepo.Get(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("failed to get availability profile: %w", err)
	}

	day := strings.ToLower(start.Weekday().String())
	if !schedule.IsBookable(profile, day, start.Format("15:04"), end.Format("15:04")) {
		return apperrors.BadRequest("doctor is not available in the requested window", nil)
	}
	return nil
}

func (s *Service) notifyBoth(ctx context.Context, apt *model.Appointment, typ model.NotificationType, title string) {
	if s.notifier == nil {
		return
	}
	message := fmt.Sprintf("%s with %s on %s",
		title, apt.DoctorName, apt.StartTime.Format("Mon Jan 2 15:04"))
	for _, recipient := range []uuid.UUID{apt.PatientID, apt.DoctorID} {
		s.notifier.Notify(ctx, &model.Notification{
			RecipientID:   recipient,
			AppointmentID: apt.ID,
			Type:          typ,
			Title:         title,
			Message:       message,
			Link:          fmt.Sprintf("/appointments/%s", apt.ID),
		})
	}
}

func (s *Service) countConflict(err error) {
	if s.metrics == nil {
		return
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrConflict {
		return
	}
	if details, ok := appErr.Details.(*apperrors.ConflictDetails); ok {
		s.metrics.ConflictsRejected.WithLabelValues(details.Side).Inc()
	}
}

func transitionVerb(to model.AppointmentStatus) string {
	switch to {
	case model.AppointmentStatusCancelled:
		return "cancel"
	case model.AppointmentStatusCompleted:
		return "complete"
	case model.AppointmentStatusNoShow:
		return "mark no-show on"
	}
	return "transition"
}
