package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"todo-planner/internal/model"
	"todo-planner/internal/remind"
	"todo-planner/internal/repository"
)

func newReminderService(db *gorm.DB, push *fakePush, now time.Time) *ReminderService {
	svc := NewReminderService(
		repository.NewTaskRepository(db),
		repository.NewMetaRepository(db),
		push,
		"https://app.example.com",
		zap.NewNop(),
	)
	svc.now = func() time.Time { return now }
	return svc
}

func registerPush(t *testing.T, db *gorm.DB, userID uint, token string) {
	t.Helper()
	require.NoError(t, repository.NewMetaRepository(db).SavePushToken(context.Background(), userID, token))
}

func TestReminderSweepMatchesFractionalWindow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "nat@example.com")
	registerPush(t, db, user.ID, "tok-1")

	// Created at T0, due T0+9h: the 2/3 mark is T0+6h. A sweep at
	// T0+6h+5m is inside [remindAt, remindAt+15m).
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := t0.Add(6*time.Hour + 5*time.Minute)

	task := seedTask(t, db, user.ID, "Write report", seedOpts{
		due:       dueString(t0.Add(9 * time.Hour)),
		createdMs: t0.UnixMilli(),
	})

	push := newFakePush()
	svc := newReminderService(db, push, now)

	sent, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	batch := push.lastBatch("tok-1")
	require.Len(t, batch, 1)
	assert.Contains(t, batch[0].Body, "Write report")
	assert.Contains(t, batch[0].Link, task.ID)

	var stored model.Task
	require.NoError(t, db.First(&stored, "id = ?", task.ID).Error)
	assert.True(t, stored.ReminderSent)

	// Immediate second run: already flagged, nothing to send.
	sent, err = svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, push.batchCount("tok-1"))
}

func TestReminderSweepExcludesOutsideWindow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "nat@example.com")
	registerPush(t, db, user.ID, "tok-1")

	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	due := t0.Add(9 * time.Hour)
	seedTask(t, db, user.ID, "too early", seedOpts{due: dueString(due), createdMs: t0.UnixMilli()})

	push := newFakePush()

	// Before the 2/3 mark: no match.
	svc := newReminderService(db, push, t0.Add(5*time.Hour))
	sent, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	// A full interval past the mark: the window has closed.
	svc = newReminderService(db, push, t0.Add(6*time.Hour).Add(remind.Interval))
	sent, err = svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestReminderSweepExcludesPastDueAndZeroLifetime(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "nat@example.com")
	registerPush(t, db, user.ID, "tok-1")

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// Past due: overdue sweep territory.
	seedTask(t, db, user.ID, "already overdue", seedOpts{
		due:       dueString(now.Add(-time.Hour)),
		createdMs: now.Add(-2 * time.Hour).UnixMilli(),
	})
	// createdMs == dueMs: undefined reminder, must neither match nor panic.
	zero := now.Add(time.Hour)
	seedTask(t, db, user.ID, "zero lifetime", seedOpts{
		due:       dueString(zero),
		createdMs: zero.UnixMilli(),
	})

	push := newFakePush()
	svc := newReminderService(db, push, now)

	sent, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, push.batchCount("tok-1"))
}

func TestReminderSweepBatchesPerUserToken(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "nat@example.com")
	registerPush(t, db, user.ID, "tok-1")

	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := t0.Add(6 * time.Hour)
	due := dueString(t0.Add(9 * time.Hour))

	seedTask(t, db, user.ID, "first", seedOpts{due: due, createdMs: t0.UnixMilli()})
	seedTask(t, db, user.ID, "second", seedOpts{due: due, createdMs: t0.UnixMilli()})

	push := newFakePush()
	svc := newReminderService(db, push, now)

	sent, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	// Both reminders travel in a single multicast to the one token.
	assert.Equal(t, 1, push.batchCount("tok-1"))
	assert.Len(t, push.lastBatch("tok-1"), 2)
}

func TestReminderSweepIsolatesFailingUser(t *testing.T) {
	db := newTestDB(t)
	broken := seedUser(t, db, "broken@example.com")
	healthy := seedUser(t, db, "healthy@example.com")
	registerPush(t, db, broken.ID, "tok-broken")
	registerPush(t, db, healthy.ID, "tok-healthy")

	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := t0.Add(6 * time.Hour)
	due := dueString(t0.Add(9 * time.Hour))

	brokenTask := seedTask(t, db, broken.ID, "cursed", seedOpts{due: due, createdMs: t0.UnixMilli()})
	seedTask(t, db, healthy.ID, "fine", seedOpts{due: due, createdMs: t0.UnixMilli()})

	push := newFakePush()
	push.failTokens["tok-broken"] = true
	svc := newReminderService(db, push, now)

	sent, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, push.batchCount("tok-healthy"))

	// The failed user's task stays unflagged: next period retries it.
	var stored model.Task
	require.NoError(t, db.First(&stored, "id = ?", brokenTask.ID).Error)
	assert.False(t, stored.ReminderSent)
}

func TestReminderSweepFallsBackToStoreWriteTime(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "nat@example.com")
	registerPush(t, db, user.ID, "tok-1")

	// No CreatedMs stored: the sweep falls back to the row's CreatedAt,
	// which is "now" in this test, so the 2/3 mark of a 30-minute
	// lifetime lands 20 minutes out — outside the current window.
	now := time.Now().UTC().Truncate(time.Second)
	seedTask(t, db, user.ID, "no created ms", seedOpts{due: dueString(now.Add(30 * time.Minute))})

	push := newFakePush()
	svc := newReminderService(db, push, now)

	sent, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
