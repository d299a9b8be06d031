package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/telecare/scheduler/internal/model"
)

type workingHoursRow struct {
	Day string `db:"day"`
	model.DayHours
}

type timeBlockRow struct {
	model.TimeBlock
	Position int `db:"position"`
}

func (r *availabilityRepository) Get(ctx context.Context, doctorID uuid.UUID) (*model.AvailabilityProfile, error) {
	profile := &model.AvailabilityProfile{
		DoctorID:     doctorID,
		WorkingHours: model.DefaultWorkingHours(),
	}

	var hours []workingHoursRow
	err := r.db.SelectContext(ctx, &hours, `
		SELECT day, start_time, end_time, available
		FROM working_hours
		WHERE doctor_id = $1
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get working hours: %w", err)
	}
	for _, row := range hours {
		profile.WorkingHours[row.Day] = row.DayHours
	}

	var blocks []timeBlockRow
	err = r.db.SelectContext(ctx, &blocks, `
		SELECT day, block_start, block_end, available, position
		FROM time_blocks
		WHERE doctor_id = $1
		ORDER BY position ASC
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get time blocks: %w", err)
	}
	for _, row := range blocks {
		profile.TimeBlocks = append(profile.TimeBlocks, row.TimeBlock)
	}

	return profile, nil
}

func (r *availabilityRepository) Upsert(ctx context.Context, profile *model.AvailabilityProfile) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := upsertProfileTx(ctx, tx, profile); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func upsertProfileTx(ctx context.Context, tx *sqlx.Tx, profile *model.AvailabilityProfile) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM working_hours WHERE doctor_id = $1`, profile.DoctorID); err != nil {
		return fmt.Errorf("failed to clear working hours: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_blocks WHERE doctor_id = $1`, profile.DoctorID); err != nil {
		return fmt.Errorf("failed to clear time blocks: %w", err)
	}

	for _, day := range model.Weekdays {
		hours, ok := profile.WorkingHours[day]
		if !ok {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO working_hours (doctor_id, day, start_time, end_time, available)
			VALUES ($1, $2, $3, $4, $5)
		`, profile.DoctorID, day, hours.Start, hours.End, hours.Available)
		if err != nil {
			return fmt.Errorf("failed to insert working hours: %w", err)
		}
	}

	// position preserves list order; block resolution is first match
	for i, block := range profile.TimeBlocks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO time_blocks (doctor_id, day, block_start, block_end, available, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, profile.DoctorID, block.Day, block.StartTime, block.EndTime, block.Available, i)
		if err != nil {
			return fmt.Errorf("failed to insert time block: %w", err)
		}
	}

	return nil
}
