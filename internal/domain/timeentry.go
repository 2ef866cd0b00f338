package domain

import (
	"context"
	"time"
)

// TimeEntry is one tracked work session for a user against an order,
// continuous except for explicit pauses.
//
// Field presence follows the entry's lifecycle state: EndedAt and
// DurationSeconds are set exactly when Status is completed, PausedAt is set
// exactly when Status is paused. The SQLite schema enforces the same rules
// with CHECK constraints so a contradictory combination cannot be persisted.
type TimeEntry struct {
	ID        int64
	UserID    int64
	OrderID   int64
	ProcessID *int64
	GroupID   *string
	Status    string
	StartedAt time.Time
	EndedAt   *time.Time
	PausedAt  *time.Time
	// PausedSeconds accumulates whole seconds spent paused across all
	// pause/resume cycles. It never decreases.
	PausedSeconds int64
	// ResumedAt is the ordered audit trail of resume instants.
	ResumedAt       []time.Time
	DurationSeconds *int64
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const (
	EntryStatusActive    = "active"
	EntryStatusPaused    = "paused"
	EntryStatusCompleted = "completed"
)

// Open reports whether the entry is still running, i.e. active or paused.
func (e *TimeEntry) Open() bool {
	return e.Status == EntryStatusActive || e.Status == EntryStatusPaused
}

// TimeEntryRepository defines persistence operations for time entries.
// Entries are never deleted through this interface; a completed entry is
// the permanent record of worked time.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	GetByID(ctx context.Context, id int64) (*TimeEntry, error)
	// GetOpenByUserAndOrder returns the active or paused entry for the
	// user/order pair, or ErrNotFound if there is none.
	GetOpenByUserAndOrder(ctx context.Context, userID, orderID int64) (*TimeEntry, error)
	ListOpenByUser(ctx context.Context, userID int64) ([]TimeEntry, error)
	ListByGroup(ctx context.Context, groupID string) ([]TimeEntry, error)
	ListCompletedByOrder(ctx context.Context, orderID int64) ([]TimeEntry, error)
	// ListCompletedByUser bounds results by StartedAt when from/to are set.
	ListCompletedByUser(ctx context.Context, userID int64, from, to *time.Time) ([]TimeEntry, error)
	Update(ctx context.Context, entry *TimeEntry) error
}
