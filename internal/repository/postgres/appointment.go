package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/internal/schedule"
	apperrors "github.com/telecare/scheduler/pkg/errors"
)

// appointmentRow flattens the optional recurrence columns for sqlx
// scanning.
type appointmentRow struct {
	model.Appointment
	RecPattern  sql.NullString `db:"recurrence_pattern"`
	RecInterval sql.NullInt64  `db:"recurrence_interval"`
	RecEndDate  sql.NullTime   `db:"recurrence_end_date"`
	RecCount    sql.NullInt64  `db:"recurrence_count"`
}

func (row *appointmentRow) toModel() *model.Appointment {
	apt := row.Appointment
	if row.RecPattern.Valid {
		rec := &model.Recurrence{
			Pattern:  model.RecurrencePattern(row.RecPattern.String),
			Interval: int(row.RecInterval.Int64),
		}
		if row.RecEndDate.Valid {
			end := row.RecEndDate.Time
			rec.EndDate = &end
		}
		if row.RecCount.Valid {
			count := int(row.RecCount.Int64)
			rec.Count = &count
		}
		apt.Recurrence = rec
	}
	return &apt
}

func recurrenceArgs(apt *model.Appointment) (pattern, interval, endDate, count interface{}) {
	if apt.Recurrence == nil {
		return nil, nil, nil, nil
	}
	pattern = string(apt.Recurrence.Pattern)
	interval = apt.Recurrence.Interval
	if apt.Recurrence.EndDate != nil {
		endDate = *apt.Recurrence.EndDate
	}
	if apt.Recurrence.Count != nil {
		count = *apt.Recurrence.Count
	}
	return pattern, interval, endDate, count
}

const appointmentColumns = `
	id, patient_id, patient_name, patient_email, doctor_id, doctor_name,
	start_time, end_time, type, location, status, notes,
	recurrence_pattern, recurrence_interval, recurrence_end_date, recurrence_count,
	created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	return r.withSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if appointment.Status == model.AppointmentStatusScheduled {
			if err := r.checkConflictsTx(ctx, tx, appointment); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO appointments (` + appointmentColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`
		pattern, interval, endDate, count := recurrenceArgs(appointment)
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.PatientID,
			appointment.PatientName,
			appointment.PatientEmail,
			appointment.DoctorID,
			appointment.DoctorName,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Type,
			appointment.Location,
			appointment.Status,
			appointment.Notes,
			pattern, interval, endDate, count,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var row appointmentRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return row.toModel(), nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	appointment.UpdatedAt = time.Now()

	return r.withSerializableTx(ctx, func(tx *sqlx.Tx) error {
		if appointment.Status == model.AppointmentStatusScheduled {
			if err := r.checkConflictsTx(ctx, tx, appointment); err != nil {
				return err
			}
		}

		query := `
			UPDATE appointments
			SET start_time = $1, end_time = $2, status = $3, notes = $4, location = $5,
				recurrence_pattern = $6, recurrence_interval = $7,
				recurrence_end_date = $8, recurrence_count = $9,
				updated_at = $10
			WHERE id = $11
		`
		pattern, interval, endDate, count := recurrenceArgs(appointment)
		result, err := tx.ExecContext(ctx, query,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Status,
			appointment.Notes,
			appointment.Location,
			pattern, interval, endDate, count,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return nil
	})
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []interface{}
	argCount := 1

	if filters != nil {
		switch filters.Role {
		case model.RoleDoctor:
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.ParticipantID)
			argCount++
		case model.RolePatient:
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.ParticipantID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.From.IsZero() {
			query += fmt.Sprintf(" AND end_time >= $%d", argCount)
			args = append(args, filters.From)
			argCount++
		}
		if !filters.To.IsZero() {
			query += fmt.Sprintf(" AND start_time < $%d", argCount)
			args = append(args, filters.To)
			argCount++
		}
	}

	query += " ORDER BY start_time ASC"

	var rows []appointmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	appointments := make([]*model.Appointment, 0, len(rows))
	for i := range rows {
		appointments = append(appointments, rows[i].toModel())
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForParticipant(ctx context.Context, role model.ParticipantRole, participantID uuid.UUID) ([]*model.Appointment, error) {
	return r.List(ctx, &model.AppointmentFilters{Role: role, ParticipantID: participantID})
}

// checkConflictsTx re-reads both participants' scheduled appointments
// inside the transaction and rejects the write if any overlap. The
// serializable isolation level makes the check-then-write atomic under
// concurrent bookings.
func (r *appointmentRepository) checkConflictsTx(ctx context.Context, tx *sqlx.Tx, appointment *model.Appointment) error {
	candidate := schedule.Candidate{
		Window:    schedule.Interval{Start: appointment.StartTime, End: appointment.EndTime},
		ExcludeID: appointment.ID,
	}

	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE (doctor_id = $1 OR patient_id = $2)
		AND status = 'scheduled'
		AND start_time < $3 AND end_time > $4
	`
	var rows []appointmentRow
	err := tx.SelectContext(ctx, &rows, query,
		appointment.DoctorID, appointment.PatientID,
		appointment.EndTime, appointment.StartTime,
	)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}

	var doctorSide, patientSide []*model.Appointment
	for i := range rows {
		apt := rows[i].toModel()
		if apt.DoctorID == appointment.DoctorID {
			doctorSide = append(doctorSide, apt)
		}
		if apt.PatientID == appointment.PatientID {
			patientSide = append(patientSide, apt)
		}
	}

	if conflicts := schedule.FindConflicts(candidate, doctorSide); len(conflicts) > 0 {
		return apperrors.NewConflict(apperrors.SideDoctor, "doctor has an overlapping appointment", conflicts)
	}
	if conflicts := schedule.FindConflicts(candidate, patientSide); len(conflicts) > 0 {
		return apperrors.NewConflict(apperrors.SidePatient, "patient has an overlapping appointment", conflicts)
	}
	return nil
}

func (r *appointmentRepository) withSerializableTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
