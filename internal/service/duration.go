package service

import (
	"context"
	"fmt"
	"time"

	"github.com/werktag/shopfloor/internal/domain"
)

// LiveElapsed returns the worked seconds of an open entry at the given
// instant, excluding all paused time. For a paused entry the value is
// frozen at the instant the pause began; for a completed entry the fixed
// duration is returned. The result is recomputed on each call rather than
// stored, which is what drives the live on-screen timer.
func LiveElapsed(entry *domain.TimeEntry, now time.Time) int64 {
	switch entry.Status {
	case domain.EntryStatusCompleted:
		if entry.DurationSeconds != nil {
			return *entry.DurationSeconds
		}
		return 0
	case domain.EntryStatusPaused:
		if entry.PausedAt == nil {
			return 0
		}
		elapsed := flooredSeconds(entry.PausedAt.Sub(entry.StartedAt)) - entry.PausedSeconds
		if elapsed < 0 {
			return 0
		}
		return elapsed
	default:
		elapsed := flooredSeconds(now.Sub(entry.StartedAt)) - entry.PausedSeconds
		if elapsed < 0 {
			return 0
		}
		return elapsed
	}
}

// TotalForOrder sums the fixed durations of all completed entries for an
// order. Entries still active or paused are excluded, not estimated.
func (s *TimeclockService) TotalForOrder(ctx context.Context, orderID int64) (int64, error) {
	entries, err := s.entries.ListCompletedByOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("list completed entries: %w", err)
	}
	return sumDurations(entries), nil
}

// TotalForUser sums the fixed durations of the user's completed entries,
// optionally bounded by a start/end instant applied to the start time.
func (s *TimeclockService) TotalForUser(ctx context.Context, userID int64, from, to *time.Time) (int64, error) {
	entries, err := s.entries.ListCompletedByUser(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("list completed entries: %w", err)
	}
	return sumDurations(entries), nil
}

func sumDurations(entries []domain.TimeEntry) int64 {
	var total int64
	for _, e := range entries {
		if e.DurationSeconds != nil {
			total += *e.DurationSeconds
		}
	}
	return total
}

// FormatClock renders seconds as HH:MM:SS, e.g. for the running timer.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatCoarse renders seconds as a short summary like "3h 25m", used where
// second precision is noise (totals, dashboards).
func FormatCoarse(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
