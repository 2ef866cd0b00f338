package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/werktag/shopfloor/internal/domain"
)

// fakeEntryRepo is an in-memory domain.TimeEntryRepository for lifecycle
// tests. updateErr lets a test inject a persistence failure for a specific
// entry to exercise partial group results.
type fakeEntryRepo struct {
	entries   map[int64]*domain.TimeEntry
	nextID    int64
	updateErr map[int64]error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[int64]*domain.TimeEntry), updateErr: make(map[int64]error)}
}

func (r *fakeEntryRepo) Create(_ context.Context, entry *domain.TimeEntry) error {
	for _, e := range r.entries {
		if e.UserID == entry.UserID && e.OrderID == entry.OrderID && e.Open() {
			return domain.ErrDuplicateActiveEntry
		}
	}
	r.nextID++
	entry.ID = r.nextID
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *fakeEntryRepo) GetByID(_ context.Context, id int64) (*domain.TimeEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEntryRepo) GetOpenByUserAndOrder(_ context.Context, userID, orderID int64) (*domain.TimeEntry, error) {
	for _, e := range r.entries {
		if e.UserID == userID && e.OrderID == orderID && e.Open() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeEntryRepo) ListOpenByUser(_ context.Context, userID int64) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for id := int64(1); id <= r.nextID; id++ {
		if e, ok := r.entries[id]; ok && e.UserID == userID && e.Open() {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) ListByGroup(_ context.Context, groupID string) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for id := int64(1); id <= r.nextID; id++ {
		if e, ok := r.entries[id]; ok && e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) ListCompletedByOrder(_ context.Context, orderID int64) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for id := int64(1); id <= r.nextID; id++ {
		if e, ok := r.entries[id]; ok && e.OrderID == orderID && e.Status == domain.EntryStatusCompleted {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEntryRepo) ListCompletedByUser(_ context.Context, userID int64, from, to *time.Time) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for id := int64(1); id <= r.nextID; id++ {
		e, ok := r.entries[id]
		if !ok || e.UserID != userID || e.Status != domain.EntryStatusCompleted {
			continue
		}
		if from != nil && e.StartedAt.Before(*from) {
			continue
		}
		if to != nil && e.StartedAt.After(*to) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEntryRepo) Update(_ context.Context, entry *domain.TimeEntry) error {
	if err := r.updateErr[entry.ID]; err != nil {
		return err
	}
	if _, ok := r.entries[entry.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

// fakeOrderRepo knows a fixed set of order IDs.
type fakeOrderRepo struct {
	ids map[int64]bool
}

func (r *fakeOrderRepo) Create(context.Context, *domain.Order) error { return nil }
func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	if !r.ids[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.Order{ID: id, OrderNumber: "WO", Name: "order"}, nil
}
func (r *fakeOrderRepo) GetByNumber(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeOrderRepo) List(context.Context) ([]domain.Order, error) { return nil, nil }
func (r *fakeOrderRepo) Update(context.Context, *domain.Order) error  { return nil }
func (r *fakeOrderRepo) Delete(context.Context, int64) error          { return nil }

// fakeProcessRepo serves a fixed set of processes.
type fakeProcessRepo struct {
	processes map[int64]*domain.Process
}

func (r *fakeProcessRepo) Create(context.Context, *domain.Process) error { return nil }
func (r *fakeProcessRepo) GetByID(_ context.Context, id int64) (*domain.Process, error) {
	p, ok := r.processes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
func (r *fakeProcessRepo) ListByOrder(context.Context, int64) ([]domain.Process, error) {
	return nil, nil
}
func (r *fakeProcessRepo) Update(context.Context, *domain.Process) error { return nil }
func (r *fakeProcessRepo) Delete(context.Context, int64) error           { return nil }

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) Set(t time.Time)         { c.t = t }

var t0 = time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)

func newClockedService(orderIDs ...int64) (*TimeclockService, *fakeEntryRepo, *fakeClock) {
	repo := newFakeEntryRepo()
	orders := &fakeOrderRepo{ids: make(map[int64]bool)}
	for _, id := range orderIDs {
		orders.ids[id] = true
	}
	clock := &fakeClock{t: t0}
	svc := NewTimeclockService(repo, orders, &fakeProcessRepo{processes: make(map[int64]*domain.Process)})
	svc.now = clock.Now
	return svc, repo, clock
}

func TestStart_CreatesActiveEntry(t *testing.T) {
	svc, _, _ := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{Notes: "welding"})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, domain.EntryStatusActive, entry.Status)
	assert.True(t, entry.StartedAt.Equal(t0))
	assert.Nil(t, entry.EndedAt)
	assert.Nil(t, entry.PausedAt)
	assert.Nil(t, entry.DurationSeconds)
	assert.EqualValues(t, 0, entry.PausedSeconds)
	assert.Equal(t, "welding", entry.Notes)
}

func TestStart_UnknownOrder(t *testing.T) {
	svc, _, _ := newClockedService(10)

	_, err := svc.Start(context.Background(), 1, 99, StartOptions{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStart_ProcessMustBelongToOrder(t *testing.T) {
	svc, _, _ := newClockedService(10, 11)
	procs := svc.processes.(*fakeProcessRepo)
	procs.processes[5] = &domain.Process{ID: 5, OrderID: 11, Name: "Milling"}

	pid := int64(5)
	_, err := svc.Start(context.Background(), 1, 10, StartOptions{ProcessID: &pid})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStart_DuplicateOpenEntry(t *testing.T) {
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	first, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	_, err = svc.Start(ctx, 1, 10, StartOptions{})
	require.ErrorIs(t, err, domain.ErrDuplicateActiveEntry)

	// A paused entry still blocks a new start.
	_, err = svc.Pause(ctx, first.ID, 1)
	require.NoError(t, err)
	_, err = svc.Start(ctx, 1, 10, StartOptions{})
	require.ErrorIs(t, err, domain.ErrDuplicateActiveEntry)

	// Another user on the same order is fine.
	_, err = svc.Start(ctx, 2, 10, StartOptions{})
	require.NoError(t, err)

	// After stopping, the same user/order pair can start again.
	clock.Advance(time.Hour)
	_, err = svc.Stop(ctx, first.ID, 1, StopOptions{})
	require.NoError(t, err)
	_, err = svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)
}

func TestPauseResume_AccumulatesPausedSeconds(t *testing.T) {
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	paused, err := svc.Pause(ctx, entry.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusPaused, paused.Status)
	require.NotNil(t, paused.PausedAt)
	assert.True(t, paused.PausedAt.Equal(t0.Add(10*time.Minute)))

	clock.Advance(5 * time.Minute)
	resumed, err := svc.Resume(ctx, entry.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusActive, resumed.Status)
	assert.Nil(t, resumed.PausedAt)
	assert.EqualValues(t, 300, resumed.PausedSeconds)
	require.Len(t, resumed.ResumedAt, 1)
	assert.True(t, resumed.ResumedAt[0].Equal(t0.Add(15*time.Minute)))

	// A second cycle only ever increases the cumulative pause.
	clock.Advance(5 * time.Minute)
	_, err = svc.Pause(ctx, entry.ID, 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	resumed, err = svc.Resume(ctx, entry.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 420, resumed.PausedSeconds)
	assert.Len(t, resumed.ResumedAt, 2)
}

func TestStop_ExcludesPausedTime(t *testing.T) {
	// Start at T0, pause at T0+600s, resume at T0+900s, stop at T0+1800s:
	// worked time is 1800 - 300 = 1500 seconds.
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	clock.Advance(600 * time.Second)
	_, err = svc.Pause(ctx, entry.ID, 1)
	require.NoError(t, err)

	clock.Advance(300 * time.Second)
	_, err = svc.Resume(ctx, entry.ID, 1)
	require.NoError(t, err)

	clock.Set(t0.Add(1800 * time.Second))
	stopped, err := svc.Stop(ctx, entry.ID, 1, StopOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.EntryStatusCompleted, stopped.Status)
	require.NotNil(t, stopped.DurationSeconds)
	assert.EqualValues(t, 1500, *stopped.DurationSeconds)
	require.NotNil(t, stopped.EndedAt)
	assert.True(t, stopped.EndedAt.Equal(t0.Add(1800*time.Second)))
	assert.Nil(t, stopped.PausedAt)
}

func TestStop_WhileStillPaused(t *testing.T) {
	// A pause that is never resumed is still excluded from the duration.
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	clock.Advance(600 * time.Second)
	_, err = svc.Pause(ctx, entry.ID, 1)
	require.NoError(t, err)

	clock.Advance(1200 * time.Second)
	stopped, err := svc.Stop(ctx, entry.ID, 1, StopOptions{})
	require.NoError(t, err)

	require.NotNil(t, stopped.DurationSeconds)
	assert.EqualValues(t, 600, *stopped.DurationSeconds)
	assert.EqualValues(t, 1200, stopped.PausedSeconds)
	assert.Nil(t, stopped.PausedAt)
}

func TestStop_CustomEndTime(t *testing.T) {
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	// The worker forgot to clock out; close the entry retroactively.
	clock.Advance(20 * time.Hour)
	endedAt := t0.Add(2 * time.Hour)
	note := "closed out next morning"
	stopped, err := svc.Stop(ctx, entry.ID, 1, StopOptions{EndedAt: &endedAt, Notes: &note})
	require.NoError(t, err)

	require.NotNil(t, stopped.DurationSeconds)
	assert.EqualValues(t, 7200, *stopped.DurationSeconds)
	assert.Equal(t, "closed out next morning", stopped.Notes)
}

func TestStop_CustomEndBeforeStart(t *testing.T) {
	svc, _, _ := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	endedAt := t0.Add(-time.Minute)
	_, err = svc.Stop(ctx, entry.ID, 1, StopOptions{EndedAt: &endedAt})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// The entry is untouched.
	unchanged, err := svc.GetByID(ctx, entry.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusActive, unchanged.Status)
}

func TestStop_Twice(t *testing.T) {
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	stopped, err := svc.Stop(ctx, entry.ID, 1, StopOptions{})
	require.NoError(t, err)
	require.NotNil(t, stopped.DurationSeconds)
	want := *stopped.DurationSeconds

	clock.Advance(time.Hour)
	_, err = svc.Stop(ctx, entry.ID, 1, StopOptions{})
	require.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	// The persisted duration did not change.
	after, err := svc.GetByID(ctx, entry.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, after.DurationSeconds)
	assert.Equal(t, want, *after.DurationSeconds)
}

func TestPause_InvalidStates(t *testing.T) {
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	_, err = svc.Pause(ctx, entry.ID, 1)
	require.NoError(t, err)

	// Pausing an already paused entry fails and leaves it unchanged.
	_, err = svc.Pause(ctx, entry.ID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	paused, err := svc.GetByID(ctx, entry.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusPaused, paused.Status)

	clock.Advance(time.Minute)
	_, err = svc.Stop(ctx, entry.ID, 1, StopOptions{})
	require.NoError(t, err)

	// Pausing a completed entry fails.
	_, err = svc.Pause(ctx, entry.ID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestResume_InvalidStates(t *testing.T) {
	svc, _, _ := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	// Resuming an active entry fails.
	_, err = svc.Resume(ctx, entry.ID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestResume_MissingPauseTimestamp(t *testing.T) {
	// A paused entry without its pause instant is a data integrity anomaly
	// that resume must refuse to paper over.
	entry := &domain.TimeEntry{Status: domain.EntryStatusPaused, StartedAt: t0}
	err := ResumeEntry(entry, t0.Add(time.Minute))
	require.ErrorIs(t, err, domain.ErrMissingPauseTimestamp)
}

func TestLifecycle_OwnershipEnforced(t *testing.T) {
	svc, _, _ := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)

	_, err = svc.Pause(ctx, entry.ID, 2)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Stop(ctx, entry.ID, 2, StopOptions{})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLifecycle_FieldPresenceInvariants(t *testing.T) {
	// endedAt/duration are set exactly on completion; pausedAt exactly
	// while paused.
	svc, _, clock := newClockedService(10)
	ctx := context.Background()

	entry, err := svc.Start(ctx, 1, 10, StartOptions{})
	require.NoError(t, err)
	assert.Nil(t, entry.EndedAt)
	assert.Nil(t, entry.DurationSeconds)
	assert.Nil(t, entry.PausedAt)

	clock.Advance(time.Minute)
	paused, err := svc.Pause(ctx, entry.ID, 1)
	require.NoError(t, err)
	assert.NotNil(t, paused.PausedAt)
	assert.Nil(t, paused.EndedAt)
	assert.Nil(t, paused.DurationSeconds)

	clock.Advance(time.Minute)
	stopped, err := svc.Stop(ctx, entry.ID, 1, StopOptions{})
	require.NoError(t, err)
	assert.NotNil(t, stopped.EndedAt)
	assert.NotNil(t, stopped.DurationSeconds)
	assert.Nil(t, stopped.PausedAt)
}
