package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pc-control-dashboard/internal/model"
)

// Custom errors for better error handling
var (
	ErrPCNotFound = errors.New("pc not found")
)

// PCRepository is the typed query/mutation interface over the pcs table.
type PCRepository interface {
	CreatePC(ctx context.Context, pc model.PC) error
	GetAllPCs(ctx context.Context) ([]model.PC, error)
	GetPCByID(ctx context.Context, id uuid.UUID) (*model.PC, error)
	UpdatePC(ctx context.Context, id uuid.UUID, update model.PCUpdate) error
	DeletePC(ctx context.Context, id uuid.UUID) error
}

// pcRepository is the concrete implementation of the PCRepository interface.
type pcRepository struct {
	DB *sql.DB
}

// NewPCRepository creates a new PCRepository.
func NewPCRepository(db *sql.DB) PCRepository {
	return &pcRepository{DB: db}
}

// CreatePC adds a new PC to the database.
func (r *pcRepository) CreatePC(ctx context.Context, pc model.PC) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO pcs (id, name, ip_address, port, password)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query,
		pc.ID,
		pc.Name,
		pc.IPAddress,
		pc.Port,
		pc.Password.Reveal(),
	)

	if err != nil {
		return fmt.Errorf("failed to create pc: %w", err)
	}

	return nil
}

// GetAllPCs retrieves all PCs ordered by name, each with its schedule
// attached when one exists. The result is never partial: any scan error
// fails the whole call.
func (r *pcRepository) GetAllPCs(ctx context.Context) ([]model.PC, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT p.id, p.name, p.ip_address, p.port, p.password, p.created_at, p.updated_at,
		       s.id, s.pc_id, s.enabled, s.start_time, s.end_time, s.sync_pending, s.created_at, s.updated_at
		FROM pcs p
		LEFT JOIN pc_schedules s ON s.pc_id = p.id
		ORDER BY p.name`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pcs: %w", err)
	}
	defer rows.Close()

	var pcs []model.PC
	for rows.Next() {
		pc, err := scanPCWithSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pc: %w", err)
		}
		pcs = append(pcs, *pc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return pcs, nil
}

// GetPCByID retrieves a single PC by its ID, schedule included.
func (r *pcRepository) GetPCByID(ctx context.Context, id uuid.UUID) (*model.PC, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT p.id, p.name, p.ip_address, p.port, p.password, p.created_at, p.updated_at,
		       s.id, s.pc_id, s.enabled, s.start_time, s.end_time, s.sync_pending, s.created_at, s.updated_at
		FROM pcs p
		LEFT JOIN pc_schedules s ON s.pc_id = p.id
		WHERE p.id = $1`

	row := r.DB.QueryRowContext(ctx, query, id)

	pc, err := scanPCWithSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPCNotFound
		}
		return nil, fmt.Errorf("failed to get pc by ID: %w", err)
	}
	return pc, nil
}

// UpdatePC applies a partial update, touching only the supplied fields.
func (r *pcRepository) UpdatePC(ctx context.Context, id uuid.UUID, update model.PCUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var setClauses []string
	var args []interface{}

	if update.Name != nil {
		args = append(args, *update.Name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.IPAddress != nil {
		args = append(args, *update.IPAddress)
		setClauses = append(setClauses, fmt.Sprintf("ip_address = $%d", len(args)))
	}
	if update.Port != nil {
		args = append(args, *update.Port)
		setClauses = append(setClauses, fmt.Sprintf("port = $%d", len(args)))
	}
	if update.Password != nil {
		args = append(args, update.Password.Reveal())
		setClauses = append(setClauses, fmt.Sprintf("password = $%d", len(args)))
	}

	if len(setClauses) == 0 {
		// Nothing to change; still report not-found for unknown ids.
		_, err := r.GetPCByID(ctx, id)
		return err
	}

	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE pcs SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args))

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pc: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPCNotFound
	}

	return nil
}

// DeletePC deletes a PC. Its schedule, if any, goes with it via the
// ON DELETE CASCADE constraint.
func (r *pcRepository) DeletePC(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `DELETE FROM pcs WHERE id = $1`

	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete pc: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPCNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPCWithSchedule scans a LEFT JOIN row into a PC, attaching the schedule
// when the joined columns are non-null.
func scanPCWithSchedule(row rowScanner) (*model.PC, error) {
	var pc model.PC
	var password string
	var (
		schedID        sql.NullString
		schedPCID      sql.NullString
		schedEnabled   sql.NullBool
		schedStart     sql.NullString
		schedEnd       sql.NullString
		schedPending   sql.NullBool
		schedCreatedAt sql.NullTime
		schedUpdatedAt sql.NullTime
	)

	err := row.Scan(
		&pc.ID, &pc.Name, &pc.IPAddress, &pc.Port, &password, &pc.CreatedAt, &pc.UpdatedAt,
		&schedID, &schedPCID, &schedEnabled, &schedStart, &schedEnd, &schedPending, &schedCreatedAt, &schedUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	pc.Password = model.Secret(password)

	if schedID.Valid {
		scheduleID, err := uuid.Parse(schedID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule id: %w", err)
		}
		schedulePCID, err := uuid.Parse(schedPCID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule pc_id: %w", err)
		}
		pc.Schedule = &model.Schedule{
			ID:          scheduleID,
			PCID:        schedulePCID,
			Enabled:     schedEnabled.Bool,
			StartTime:   schedStart.String,
			EndTime:     schedEnd.String,
			SyncPending: schedPending.Bool,
			CreatedAt:   schedCreatedAt.Time,
			UpdatedAt:   schedUpdatedAt.Time,
		}
	}

	return &pc, nil
}
