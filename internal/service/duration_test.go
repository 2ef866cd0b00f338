package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/werktag/shopfloor/internal/domain"
)

func TestLiveElapsed_Active(t *testing.T) {
	entry := &domain.TimeEntry{
		Status:        domain.EntryStatusActive,
		StartedAt:     t0,
		PausedSeconds: 300,
	}
	// 30 minutes on the clock minus 5 minutes paused.
	assert.EqualValues(t, 1500, LiveElapsed(entry, t0.Add(30*time.Minute)))
}

func TestLiveElapsed_PausedIsFrozen(t *testing.T) {
	pausedAt := t0.Add(10 * time.Minute)
	entry := &domain.TimeEntry{
		Status:    domain.EntryStatusPaused,
		StartedAt: t0,
		PausedAt:  &pausedAt,
	}
	// However much later we look, the timer shows the value at pause time.
	assert.EqualValues(t, 600, LiveElapsed(entry, t0.Add(11*time.Minute)))
	assert.EqualValues(t, 600, LiveElapsed(entry, t0.Add(3*time.Hour)))
}

func TestLiveElapsed_Completed(t *testing.T) {
	dur := int64(1500)
	entry := &domain.TimeEntry{
		Status:          domain.EntryStatusCompleted,
		StartedAt:       t0,
		DurationSeconds: &dur,
	}
	assert.EqualValues(t, 1500, LiveElapsed(entry, t0.Add(24*time.Hour)))
}

func TestLiveElapsed_ClockSkewClampsToZero(t *testing.T) {
	entry := &domain.TimeEntry{Status: domain.EntryStatusActive, StartedAt: t0}
	assert.EqualValues(t, 0, LiveElapsed(entry, t0.Add(-time.Minute)))
}

func TestTotalForOrder_ExcludesOpenEntries(t *testing.T) {
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	// Two completed entries by different users, one still running.
	e1, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.Stop(ctx, e1.ID, 1, StopOptions{})
	require.NoError(t, err)

	e2, err := svc.Start(ctx, 2, 10, StartOptions{})
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, err = svc.Stop(ctx, e2.ID, 2, StopOptions{})
	require.NoError(t, err)

	_, err = svc.Start(ctx, 3, 10, StartOptions{})
	require.NoError(t, err)
	clock.Advance(time.Hour) // still running, must not count

	total, err := svc.TotalForOrder(ctx, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 5400, total)
}

func TestTotalForUser_DateBounds(t *testing.T) {
	svc, _, clock := newClockedService(10, 11)
	ctx := context.Background()

	// Day one: one hour on order 10.
	e1, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = svc.Stop(ctx, e1.ID, 1, StopOptions{})
	require.NoError(t, err)

	// Day two: two hours on order 11.
	clock.Set(t0.AddDate(0, 0, 1))
	e2, err := svc.Start(ctx, 1, 11, StartOptions{})
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	_, err = svc.Stop(ctx, e2.ID, 1, StopOptions{})
	require.NoError(t, err)

	total, err := svc.TotalForUser(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3*3600, total)

	from := t0.AddDate(0, 0, 1)
	total, err = svc.TotalForUser(ctx, 1, &from, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2*3600, total)

	to := t0.Add(12 * time.Hour)
	total, err = svc.TotalForUser(ctx, 1, nil, &to)
	require.NoError(t, err)
	assert.EqualValues(t, 3600, total)
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{360000, "100:00:00"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestFormatCoarse(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0m"},
		{59, "0m"},
		{60, "1m"},
		{3600, "1h 0m"},
		{12345, "3h 25m"},
		{-5, "0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCoarse(tt.seconds), "seconds=%d", tt.seconds)
	}
}
