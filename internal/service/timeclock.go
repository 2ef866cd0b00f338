package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
)

// TimeclockService governs the lifecycle of time entries: start, pause,
// resume, stop. The transitions themselves are pure functions of an entry
// and an instant; the service wraps them with lookups, ownership checks,
// and persistence.
type TimeclockService struct {
	entries   domain.TimeEntryRepository
	orders    domain.OrderRepository
	processes domain.ProcessRepository
	now       func() time.Time
}

// NewTimeclockService creates a new TimeclockService.
func NewTimeclockService(entries domain.TimeEntryRepository, orders domain.OrderRepository, processes domain.ProcessRepository) *TimeclockService {
	return &TimeclockService{
		entries:   entries,
		orders:    orders,
		processes: processes,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// StartOptions carries the optional attributes of a new time entry.
type StartOptions struct {
	ProcessID *int64
	GroupID   *string
	Notes     string
}

// StopOptions carries the optional attributes of a stop operation.
// EndedAt lets a caller close out a session retroactively, e.g. when a
// worker forgot to clock out the previous day. Notes, when set, replace the
// entry's notes.
type StopOptions struct {
	EndedAt *time.Time
	Notes   *string
}

// Start opens a new active entry for the user on the given order. It fails
// with ErrDuplicateActiveEntry when the user already has an open entry for
// that order. The pre-check here is advisory; the database's partial unique
// index catches the race between two concurrent starts.
func (s *TimeclockService) Start(ctx context.Context, userID, orderID int64, opts StartOptions) (*domain.TimeEntry, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if opts.ProcessID != nil {
		process, err := s.processes.GetByID(ctx, *opts.ProcessID)
		if err != nil {
			return nil, fmt.Errorf("get process: %w", err)
		}
		if process.OrderID != orderID {
			return nil, fmt.Errorf("%w: process does not belong to order", domain.ErrInvalidInput)
		}
	}

	_, err := s.entries.GetOpenByUserAndOrder(ctx, userID, orderID)
	if err == nil {
		return nil, domain.ErrDuplicateActiveEntry
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check open entry: %w", err)
	}

	entry := &domain.TimeEntry{
		UserID:    userID,
		OrderID:   orderID,
		ProcessID: opts.ProcessID,
		GroupID:   opts.GroupID,
		Status:    domain.EntryStatusActive,
		StartedAt: s.now(),
		Notes:     opts.Notes,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create time entry: %w", err)
	}

	return entry, nil
}

// Pause pauses the user's active entry.
func (s *TimeclockService) Pause(ctx context.Context, entryID, userID int64) (*domain.TimeEntry, error) {
	entry, err := s.loadOwned(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}

	if err := PauseEntry(entry, s.now()); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update time entry: %w", err)
	}
	return entry, nil
}

// Resume resumes the user's paused entry.
func (s *TimeclockService) Resume(ctx context.Context, entryID, userID int64) (*domain.TimeEntry, error) {
	entry, err := s.loadOwned(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}

	if err := ResumeEntry(entry, s.now()); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update time entry: %w", err)
	}
	return entry, nil
}

// Stop completes the user's entry and fixes its final duration.
func (s *TimeclockService) Stop(ctx context.Context, entryID, userID int64, opts StopOptions) (*domain.TimeEntry, error) {
	entry, err := s.loadOwned(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}

	endedAt := s.now()
	if opts.EndedAt != nil {
		endedAt = opts.EndedAt.UTC()
	}

	if err := StopEntry(entry, endedAt, opts.Notes); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update time entry: %w", err)
	}
	return entry, nil
}

// GetByID returns an entry after checking ownership.
func (s *TimeclockService) GetByID(ctx context.Context, entryID, userID int64) (*domain.TimeEntry, error) {
	return s.loadOwned(ctx, entryID, userID)
}

// ListOpenByUser returns the user's open (active or paused) entries.
func (s *TimeclockService) ListOpenByUser(ctx context.Context, userID int64) ([]domain.TimeEntry, error) {
	return s.entries.ListOpenByUser(ctx, userID)
}

func (s *TimeclockService) loadOwned(ctx context.Context, entryID, userID int64) (*domain.TimeEntry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

// PauseEntry transitions an active entry to paused at the given instant.
func PauseEntry(entry *domain.TimeEntry, now time.Time) error {
	if entry.Status == domain.EntryStatusCompleted {
		return fmt.Errorf("%w: cannot pause a completed entry", domain.ErrInvalidStateTransition)
	}
	if entry.Status != domain.EntryStatusActive {
		return fmt.Errorf("%w: entry is not active", domain.ErrInvalidStateTransition)
	}

	pausedAt := now.UTC()
	entry.PausedAt = &pausedAt
	entry.Status = domain.EntryStatusPaused
	return nil
}

// ResumeEntry transitions a paused entry back to active, folding the
// elapsed pause into the entry's cumulative paused seconds and recording the
// resume instant in the audit trail.
func ResumeEntry(entry *domain.TimeEntry, now time.Time) error {
	if entry.Status == domain.EntryStatusCompleted {
		return fmt.Errorf("%w: cannot resume a completed entry", domain.ErrInvalidStateTransition)
	}
	if entry.Status != domain.EntryStatusPaused {
		return fmt.Errorf("%w: entry is not paused", domain.ErrInvalidStateTransition)
	}
	if entry.PausedAt == nil {
		return domain.ErrMissingPauseTimestamp
	}

	now = now.UTC()
	entry.PausedSeconds += flooredSeconds(now.Sub(*entry.PausedAt))
	entry.ResumedAt = append(entry.ResumedAt, now)
	entry.PausedAt = nil
	entry.Status = domain.EntryStatusActive
	return nil
}

// StopEntry completes an entry at endedAt and fixes its final duration:
// the wall-clock span minus all paused seconds, including a still-open
// pause. A paused interval is therefore excluded from the duration whether
// or not the entry was resumed before stopping.
func StopEntry(entry *domain.TimeEntry, endedAt time.Time, notes *string) error {
	if entry.Status == domain.EntryStatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	endedAt = endedAt.UTC()
	if endedAt.Before(entry.StartedAt) {
		return fmt.Errorf("%w: end time is before start time", domain.ErrInvalidInput)
	}

	paused := entry.PausedSeconds
	if entry.Status == domain.EntryStatusPaused {
		if entry.PausedAt == nil {
			return domain.ErrMissingPauseTimestamp
		}
		paused += flooredSeconds(endedAt.Sub(*entry.PausedAt))
		entry.PausedSeconds = paused
	}

	duration := flooredSeconds(endedAt.Sub(entry.StartedAt)) - paused
	if duration < 0 {
		duration = 0
	}

	entry.EndedAt = &endedAt
	entry.DurationSeconds = &duration
	entry.PausedAt = nil
	entry.Status = domain.EntryStatusCompleted
	if notes != nil {
		entry.Notes = *notes
	}
	return nil
}

// flooredSeconds converts a duration to whole seconds, truncating toward
// zero and clamping negative values (clock skew) to zero.
func flooredSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
