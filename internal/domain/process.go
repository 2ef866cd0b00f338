package domain

import (
	"context"
	"time"
)

// Process is a single process step within a work order. The planned window
// drives the scheduling display; AssignedUserID records which worker the
// step is assigned to.
type Process struct {
	ID             int64
	OrderID        int64
	SortOrder      int
	Name           string
	PlannedStart   *time.Time
	PlannedEnd     *time.Time
	AssignedUserID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProcessRepository defines persistence operations for process steps.
type ProcessRepository interface {
	Create(ctx context.Context, process *Process) error
	GetByID(ctx context.Context, id int64) (*Process, error)
	ListByOrder(ctx context.Context, orderID int64) ([]Process, error)
	Update(ctx context.Context, process *Process) error
	Delete(ctx context.Context, id int64) error
}
