package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
)

// ProcessRepository implements domain.ProcessRepository using SQLite.
type ProcessRepository struct {
	db *sql.DB
}

// NewProcessRepository creates a new SQLite-backed ProcessRepository.
func NewProcessRepository(db *DB) *ProcessRepository {
	return &ProcessRepository{db: db.SqlDB}
}

const processColumns = `id, order_id, sort_order, name, planned_start, planned_end, assigned_user_id, created_at, updated_at`

func scanProcess(row interface{ Scan(...any) error }, p *domain.Process) error {
	return row.Scan(&p.ID, &p.OrderID, &p.SortOrder, &p.Name,
		&p.PlannedStart, &p.PlannedEnd, &p.AssignedUserID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProcessRepository) Create(ctx context.Context, process *domain.Process) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO processes (order_id, sort_order, name, planned_start, planned_end, assigned_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		process.OrderID, process.SortOrder, process.Name,
		process.PlannedStart, process.PlannedEnd, process.AssignedUserID, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert process: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get process id: %w", err)
	}

	process.ID = id
	process.CreatedAt = now
	process.UpdatedAt = now
	return nil
}

func (r *ProcessRepository) GetByID(ctx context.Context, id int64) (*domain.Process, error) {
	p := &domain.Process{}
	err := scanProcess(r.db.QueryRowContext(ctx,
		`SELECT `+processColumns+` FROM processes WHERE id = ?`, id), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query process by id: %w", err)
	}
	return p, nil
}

func (r *ProcessRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.Process, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+processColumns+` FROM processes WHERE order_id = ? ORDER BY sort_order, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	var processes []domain.Process
	for rows.Next() {
		var p domain.Process
		if err := scanProcess(rows, &p); err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		processes = append(processes, p)
	}
	return processes, rows.Err()
}

func (r *ProcessRepository) Update(ctx context.Context, process *domain.Process) error {
	now := time.Now().UTC()
	process.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE processes SET sort_order = ?, name = ?, planned_start = ?,
		 planned_end = ?, assigned_user_id = ?, updated_at = ? WHERE id = ?`,
		process.SortOrder, process.Name, process.PlannedStart,
		process.PlannedEnd, process.AssignedUserID, now, process.ID,
	)
	if err != nil {
		return fmt.Errorf("update process: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProcessRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM processes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete process: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
