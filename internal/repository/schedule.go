package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pc-control-dashboard/internal/model"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrPCMissing is returned when an upsert references a PC that does
	// not exist (foreign key violation).
	ErrPCMissing = errors.New("referenced pc does not exist")
)

// ScheduleRepository is the typed query/mutation interface over the
// pc_schedules table. Schedules are keyed by pc_id: the UNIQUE constraint
// makes upsert the only create path and caps each PC at one schedule.
type ScheduleRepository interface {
	GetByPCID(ctx context.Context, pcID uuid.UUID) (*model.Schedule, error)
	Upsert(ctx context.Context, schedule model.Schedule) (*model.Schedule, error)
	ToggleEnabled(ctx context.Context, pcID uuid.UUID, enabled bool) error
	MarkSynced(ctx context.Context, pcID uuid.UUID) error
}

type scheduleRepository struct {
	DB *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{DB: db}
}

// GetByPCID retrieves the schedule for a PC. Absence is reported as
// ErrScheduleNotFound; the service layer distinguishes it from failures.
func (r *scheduleRepository) GetByPCID(ctx context.Context, pcID uuid.UUID) (*model.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, pc_id, enabled, start_time, end_time, sync_pending, created_at, updated_at
		FROM pc_schedules
		WHERE pc_id = $1`

	row := r.DB.QueryRowContext(ctx, query, pcID)

	var s model.Schedule
	if err := row.Scan(&s.ID, &s.PCID, &s.Enabled, &s.StartTime, &s.EndTime, &s.SyncPending, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule by pc id: %w", err)
	}
	return &s, nil
}

// Upsert creates the schedule if the PC has none, else updates it in place.
// The returned schedule reflects the stored row.
func (r *scheduleRepository) Upsert(ctx context.Context, schedule model.Schedule) (*model.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO pc_schedules (id, pc_id, enabled, start_time, end_time, sync_pending)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pc_id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    sync_pending = EXCLUDED.sync_pending,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id, pc_id, enabled, start_time, end_time, sync_pending, created_at, updated_at`

	row := r.DB.QueryRowContext(ctx, query,
		schedule.ID,
		schedule.PCID,
		schedule.Enabled,
		schedule.StartTime,
		schedule.EndTime,
		schedule.SyncPending,
	)

	var s model.Schedule
	if err := row.Scan(&s.ID, &s.PCID, &s.Enabled, &s.StartTime, &s.EndTime, &s.SyncPending, &s.CreatedAt, &s.UpdatedAt); err != nil {
		// Foreign key violation: the pcId does not reference a PC.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrPCMissing
		}
		return nil, fmt.Errorf("failed to upsert schedule: %w", err)
	}

	return &s, nil
}

// ToggleEnabled flips only the enabled flag on an existing schedule. It
// never creates one: an unknown pc_id maps to ErrScheduleNotFound. The row
// goes back to sync_pending until the device agent confirms the change.
func (r *scheduleRepository) ToggleEnabled(ctx context.Context, pcID uuid.UUID, enabled bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE pc_schedules
		SET enabled = $1, sync_pending = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE pc_id = $2`

	result, err := r.DB.ExecContext(ctx, query, enabled, pcID)
	if err != nil {
		return fmt.Errorf("failed to toggle schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

// MarkSynced clears the sync_pending flag after the device agent has
// confirmed the schedule.
func (r *scheduleRepository) MarkSynced(ctx context.Context, pcID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE pc_schedules
		SET sync_pending = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE pc_id = $1`

	result, err := r.DB.ExecContext(ctx, query, pcID)
	if err != nil {
		return fmt.Errorf("failed to mark schedule synced: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}
