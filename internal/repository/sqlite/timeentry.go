package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
)

// TimeEntryRepository implements domain.TimeEntryRepository using SQLite.
type TimeEntryRepository struct {
	db *sql.DB
}

// NewTimeEntryRepository creates a new SQLite-backed TimeEntryRepository.
func NewTimeEntryRepository(db *DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db.SqlDB}
}

const entryColumns = `id, user_id, order_id, process_id, group_id, status, started_at,
	ended_at, paused_at, paused_seconds, resumed_at, duration_seconds, notes, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }, e *domain.TimeEntry) error {
	var resumed string
	err := row.Scan(&e.ID, &e.UserID, &e.OrderID, &e.ProcessID, &e.GroupID,
		&e.Status, &e.StartedAt, &e.EndedAt, &e.PausedAt, &e.PausedSeconds,
		&resumed, &e.DurationSeconds, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resumed), &e.ResumedAt); err != nil {
		return fmt.Errorf("decode resume trail: %w", err)
	}
	return nil
}

func encodeResumeTrail(resumedAt []time.Time) (string, error) {
	if resumedAt == nil {
		return "[]", nil
	}
	b, err := json.Marshal(resumedAt)
	if err != nil {
		return "", fmt.Errorf("encode resume trail: %w", err)
	}
	return string(b), nil
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	now := time.Now().UTC()
	resumed, err := encodeResumeTrail(entry.ResumedAt)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (user_id, order_id, process_id, group_id, status, started_at,
		 ended_at, paused_at, paused_seconds, resumed_at, duration_seconds, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.OrderID, entry.ProcessID, entry.GroupID, entry.Status, entry.StartedAt,
		entry.EndedAt, entry.PausedAt, entry.PausedSeconds, resumed, entry.DurationSeconds, entry.Notes, now, now,
	)
	if err != nil {
		if isOpenEntryConflict(err) {
			return domain.ErrDuplicateActiveEntry
		}
		return fmt.Errorf("insert time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get time entry id: %w", err)
	}

	entry.ID = id
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	e := &domain.TimeEntry{}
	err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query time entry by id: %w", err)
	}
	return e, nil
}

func (r *TimeEntryRepository) GetOpenByUserAndOrder(ctx context.Context, userID, orderID int64) (*domain.TimeEntry, error) {
	e := &domain.TimeEntry{}
	err := scanEntry(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE user_id = ? AND order_id = ? AND status IN ('active', 'paused')`,
		userID, orderID), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query open entry: %w", err)
	}
	return e, nil
}

func (r *TimeEntryRepository) ListOpenByUser(ctx context.Context, userID int64) ([]domain.TimeEntry, error) {
	return r.list(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE user_id = ? AND status IN ('active', 'paused')
		 ORDER BY started_at`, userID)
}

func (r *TimeEntryRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.TimeEntry, error) {
	return r.list(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE group_id = ? ORDER BY id`, groupID)
}

func (r *TimeEntryRepository) ListCompletedByOrder(ctx context.Context, orderID int64) ([]domain.TimeEntry, error) {
	return r.list(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE order_id = ? AND status = 'completed'
		 ORDER BY started_at`, orderID)
}

func (r *TimeEntryRepository) ListCompletedByUser(ctx context.Context, userID int64, from, to *time.Time) ([]domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries
		 WHERE user_id = ? AND status = 'completed'`
	args := []any{userID}
	if from != nil {
		query += ` AND started_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND started_at <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY started_at`
	return r.list(ctx, query, args...)
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *domain.TimeEntry) error {
	now := time.Now().UTC()
	entry.UpdatedAt = now

	resumed, err := encodeResumeTrail(entry.ResumedAt)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET status = ?, ended_at = ?, paused_at = ?,
		 paused_seconds = ?, resumed_at = ?, duration_seconds = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		entry.Status, entry.EndedAt, entry.PausedAt,
		entry.PausedSeconds, resumed, entry.DurationSeconds, entry.Notes, now, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update time entry: %w", err)
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

func (r *TimeEntryRepository) list(ctx context.Context, query string, args ...any) ([]domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isOpenEntryConflict detects a violation of the partial unique index that
// allows at most one open entry per user and order.
func isOpenEntryConflict(err error) bool {
	return isUniqueConstraintError(err) &&
		strings.Contains(err.Error(), "time_entries")
}
