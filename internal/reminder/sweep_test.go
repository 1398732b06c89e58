package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memReminderStore struct {
	mu        sync.Mutex
	reminders map[int64]*model.Reminder
	claimErr  error
}

func newMemReminderStore() *memReminderStore {
	return &memReminderStore{reminders: make(map[int64]*model.Reminder)}
}

func (m *memReminderStore) Schedule(_ context.Context, interviewID int64, fireAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reminders[interviewID]; ok {
		return false, nil
	}
	m.reminders[interviewID] = &model.Reminder{InterviewID: interviewID, FireAt: fireAt, Status: model.ReminderStatusScheduled}
	return true, nil
}

func (m *memReminderStore) Cancel(_ context.Context, interviewID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rem, ok := m.reminders[interviewID]
	if !ok || rem.Status != model.ReminderStatusScheduled {
		return false, nil
	}
	rem.Status = model.ReminderStatusCancelled
	return true, nil
}

func (m *memReminderStore) Get(_ context.Context, interviewID int64) (*model.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rem, ok := m.reminders[interviewID]
	if !ok {
		return nil, nil
	}
	cp := *rem
	return &cp, nil
}

func (m *memReminderStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return nil, m.claimErr
	}

	var due []*model.Reminder
	for _, rem := range m.reminders {
		if rem.Status == model.ReminderStatusScheduled && !rem.FireAt.After(now) {
			due = append(due, rem)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]*model.Reminder, 0, len(due))
	for _, rem := range due {
		rem.Status = model.ReminderStatusFired
		cp := *rem
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

type fireRecorder struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (f *fireRecorder) fire(_ context.Context, interviewID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, interviewID)
	return f.err
}

func (f *fireRecorder) fired() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

func newTestSweeper(store Store, now time.Time) (*Sweeper, *fireRecorder) {
	rec := &fireRecorder{}
	s := NewSweeper(store, time.Minute, zap.NewNop())
	s.SetFireFunc(rec.fire)
	s.now = func() time.Time { return now }
	return s, rec
}

func TestSweeper_FiresOnlyDueReminders(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemReminderStore()
	s, rec := newTestSweeper(store, now)

	require.NoError(t, s.Schedule(ctx, 1, now.Add(-time.Minute)))
	require.NoError(t, s.Schedule(ctx, 2, now))
	require.NoError(t, s.Schedule(ctx, 3, now.Add(time.Hour)))

	assert.Equal(t, 2, s.Sweep(ctx))
	assert.Equal(t, []int64{1, 2}, rec.fired())

	t.Run("Given a fired reminder When swept again Then it does not fire twice", func(t *testing.T) {
		assert.Equal(t, 0, s.Sweep(ctx))
		assert.Len(t, rec.fired(), 2)
	})

	t.Run("Given a future reminder When it falls due Then it fires", func(t *testing.T) {
		s.now = func() time.Time { return now.Add(2 * time.Hour) }
		assert.Equal(t, 1, s.Sweep(ctx))
		assert.Equal(t, []int64{1, 2, 3}, rec.fired())
	})
}

func TestSweeper_ScheduleTwiceKeepsFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemReminderStore()
	s, _ := newTestSweeper(store, now)

	require.NoError(t, s.Schedule(ctx, 7, now.Add(time.Hour)))
	require.NoError(t, s.Schedule(ctx, 7, now.Add(3*time.Hour)))

	rem, err := s.Lookup(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, rem)
	assert.Equal(t, now.Add(time.Hour), rem.FireAt)
}

func TestSweeper_CancelledReminderNeverFires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemReminderStore()
	s, rec := newTestSweeper(store, now)

	require.NoError(t, s.Schedule(ctx, 4, now.Add(-time.Second)))
	require.NoError(t, s.Cancel(ctx, 4))
	require.NoError(t, s.Cancel(ctx, 4))
	require.NoError(t, s.Cancel(ctx, 99))

	assert.Equal(t, 0, s.Sweep(ctx))
	assert.Empty(t, rec.fired())

	rem, err := s.Lookup(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusCancelled, rem.Status)
}

func TestSweeper_DrainsMoreThanOneBatch(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemReminderStore()
	s, rec := newTestSweeper(store, now)
	s.batch = 2

	for id := int64(1); id <= 5; id++ {
		require.NoError(t, s.Schedule(ctx, id, now.Add(-time.Duration(id)*time.Minute)))
	}

	assert.Equal(t, 5, s.Sweep(ctx))
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, rec.fired())
}

func TestSweeper_FailuresAreNotRetried(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemReminderStore()
	s, rec := newTestSweeper(store, now)
	rec.err = errors.New("telegram down")

	require.NoError(t, s.Schedule(ctx, 1, now.Add(-time.Minute)))

	assert.Equal(t, 1, s.Sweep(ctx))
	assert.Equal(t, 0, s.Sweep(ctx))
	assert.Equal(t, []int64{1}, rec.fired())
}

func TestSweeper_ClaimErrorStopsSweep(t *testing.T) {
	store := newMemReminderStore()
	store.claimErr = errors.New("connection reset")
	s, rec := newTestSweeper(store, time.Now())

	assert.Equal(t, 0, s.Sweep(context.Background()))
	assert.Empty(t, rec.fired())
}

func TestSweeper_StartFiresOverdueAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newMemReminderStore()
	s, rec := newTestSweeper(store, now)
	require.NoError(t, s.Schedule(ctx, 11, now.Add(-time.Hour)))

	s.Start(ctx)
	assert.Eventually(t, func() bool { return len(rec.fired()) == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
}
