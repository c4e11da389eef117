// Package client is the task-mutation-time reminder scheduler: the piece
// that runs in the app right after a task is created or edited. It
// re-derives the same fractional timing as the server sweep from the
// shared remind package, so the two sides cannot drift.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-planner/internal/remind"
)

// Platform identifies the runtime the scheduler was invoked from.
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// ErrPermissionDenied is returned when the user refused notification
// permission; the caller surfaces it and abandons scheduling.
var ErrPermissionDenied = errors.New("enable notifications in settings to receive reminders")

// LocalNotifier is the device-level notification API: ask permission,
// then schedule a one-shot notification at a fixed instant.
type LocalNotifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleAt(ctx context.Context, title, body string, at time.Time) error
}

// TokenRegistrar obtains a push token for this browser instance and
// stores it against the user's registration record.
type TokenRegistrar interface {
	Register(ctx context.Context, userID uint) error
}

// Scheduler arranges a reminder near, but strictly before, a task's due
// time.
type Scheduler struct {
	local  LocalNotifier
	tokens TokenRegistrar

	now func() time.Time
}

func NewScheduler(local LocalNotifier, tokens TokenRegistrar) *Scheduler {
	return &Scheduler{local: local, tokens: tokens, now: time.Now}
}

// Schedule plans a reminder for one task. Tasks due within the minimum
// lead time are skipped silently. Native platforms get a local device
// notification at the fractional instant snapped to the sweep cadence;
// the web relies on the server sweep and only (re)registers its push
// token. No retry here: the user re-arms by editing the task.
func (s *Scheduler) Schedule(ctx context.Context, userID uint, title string, due time.Time, platform Platform) error {
	now := s.now()
	if due.Sub(now) < remind.MinLead {
		return nil // too close to be useful
	}

	fireAt := remind.CeilInterval(remind.At(now, due))

	switch platform {
	case PlatformAndroid, PlatformIOS:
		granted, err := s.local.RequestPermission(ctx)
		if err != nil {
			return fmt.Errorf("request notification permission: %w", err)
		}
		if !granted {
			return ErrPermissionDenied
		}
		body := fmt.Sprintf("%q is due soon!", title)
		if err := s.local.ScheduleAt(ctx, "Upcoming Task", body, fireAt); err != nil {
			return fmt.Errorf("schedule local notification: %w", err)
		}
	default:
		if err := s.tokens.Register(ctx, userID); err != nil {
			return fmt.Errorf("register push token: %w", err)
		}
	}
	return nil
}
