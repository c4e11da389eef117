package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-planner/internal/remind"
)

type fakeLocal struct {
	granted    bool
	permErr    error
	scheduled  []time.Time
	titles     []string
	askedCount int
}

func (f *fakeLocal) RequestPermission(context.Context) (bool, error) {
	f.askedCount++
	return f.granted, f.permErr
}

func (f *fakeLocal) ScheduleAt(_ context.Context, title, _ string, at time.Time) error {
	f.titles = append(f.titles, title)
	f.scheduled = append(f.scheduled, at)
	return nil
}

type fakeRegistrar struct {
	registered []uint
	err        error
}

func (f *fakeRegistrar) Register(_ context.Context, userID uint) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, userID)
	return nil
}

func newTestScheduler(local *fakeLocal, reg *fakeRegistrar, now time.Time) *Scheduler {
	s := NewScheduler(local, reg)
	s.now = func() time.Time { return now }
	return s
}

func TestScheduleSkipsWhenTooClose(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	local := &fakeLocal{granted: true}
	reg := &fakeRegistrar{}
	s := newTestScheduler(local, reg, now)

	// 3 minutes out is under the 5-minute floor: nothing happens,
	// on any platform.
	err := s.Schedule(context.Background(), 1, "soon", now.Add(3*time.Minute), PlatformAndroid)
	require.NoError(t, err)
	assert.Zero(t, local.askedCount)
	assert.Empty(t, local.scheduled)

	err = s.Schedule(context.Background(), 1, "soon", now.Add(3*time.Minute), PlatformWeb)
	require.NoError(t, err)
	assert.Empty(t, reg.registered)
}

func TestScheduleNativeFiresAtSnappedFraction(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(9 * time.Hour)
	local := &fakeLocal{granted: true}
	s := newTestScheduler(local, &fakeRegistrar{}, now)

	err := s.Schedule(context.Background(), 1, "Write report", due, PlatformIOS)
	require.NoError(t, err)

	require.Len(t, local.scheduled, 1)
	// 2/3 of 9h is 6h; 18:00 is already on a 15-minute boundary.
	assert.Equal(t, now.Add(6*time.Hour), local.scheduled[0])

	// An off-boundary fraction snaps forward to the sweep cadence.
	local.scheduled = nil
	due = now.Add(100 * time.Minute) // 2/3 mark at +66m40s
	err = s.Schedule(context.Background(), 1, "odd duration", due, PlatformAndroid)
	require.NoError(t, err)
	require.Len(t, local.scheduled, 1)
	want := remind.CeilInterval(now.Add(66*time.Minute + 40*time.Second))
	assert.Equal(t, want, local.scheduled[0])
	assert.True(t, local.scheduled[0].Before(due))
}

func TestSchedulePermissionDenied(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	local := &fakeLocal{granted: false}
	s := newTestScheduler(local, &fakeRegistrar{}, now)

	err := s.Schedule(context.Background(), 1, "title", now.Add(time.Hour), PlatformAndroid)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Empty(t, local.scheduled)
}

func TestScheduleWebRegistersToken(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	local := &fakeLocal{granted: true}
	reg := &fakeRegistrar{}
	s := newTestScheduler(local, reg, now)

	err := s.Schedule(context.Background(), 42, "title", now.Add(time.Hour), PlatformWeb)
	require.NoError(t, err)
	assert.Equal(t, []uint{42}, reg.registered)
	// The web branch never touches the device notification API; the
	// server sweep delivers the push at the right time.
	assert.Zero(t, local.askedCount)
}

func TestScheduleWebRegistrationFailureSurfaces(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	reg := &fakeRegistrar{err: assert.AnError}
	s := newTestScheduler(&fakeLocal{}, reg, now)

	err := s.Schedule(context.Background(), 1, "title", now.Add(time.Hour), PlatformWeb)
	assert.ErrorIs(t, err, assert.AnError)
}
