package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"todo-planner/internal/model"
	"todo-planner/internal/notify"
	"todo-planner/internal/remind"
	"todo-planner/internal/repository"
)

// ReminderService is the upcoming-reminder sweep: for every push
// registration it finds the owner's not-yet-reminded tasks whose
// fractional reminder instant fell into the window ending now, sends one
// batched push to the user's token and flips the reminder flags.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	metaRepo *repository.MetaRepository
	push     notify.PushSender
	baseURL  string
	log      *zap.Logger

	now func() time.Time
}

func NewReminderService(
	taskRepo *repository.TaskRepository,
	metaRepo *repository.MetaRepository,
	push notify.PushSender,
	baseURL string,
	log *zap.Logger,
) *ReminderService {
	return &ReminderService{
		taskRepo: taskRepo,
		metaRepo: metaRepo,
		push:     push,
		baseURL:  baseURL,
		log:      log,
		now:      time.Now,
	}
}

// Sweep processes all registrations concurrently and returns the number
// of tasks reminded. A failure on one user's batch never blocks the
// others; their tasks stay unflagged and the next sweep retries them.
func (s *ReminderService) Sweep(ctx context.Context) (int, error) {
	regs, err := s.metaRepo.ListPushRegistrations(ctx)
	if err != nil {
		return 0, fmt.Errorf("list registrations: %w", err)
	}

	now := s.now()
	var sent atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, reg := range regs {
		reg := reg
		g.Go(func() error {
			n, err := s.sweepUser(gctx, reg, now)
			if err != nil {
				s.log.Warn("reminder sweep: user skipped",
					zap.Uint("user_id", reg.UserID),
					zap.Error(err))
				return nil // isolated: do not cancel sibling users
			}
			sent.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(sent.Load()), err
	}
	return int(sent.Load()), nil
}

func (s *ReminderService) sweepUser(ctx context.Context, reg model.PushRegistration, now time.Time) (int, error) {
	zoneName, err := s.metaRepo.Timezone(ctx, reg.UserID)
	if err != nil {
		return 0, err
	}
	loc := remind.Zone(zoneName)

	tasks, err := s.taskRepo.ListReminderCandidates(ctx, reg.UserID)
	if err != nil {
		return 0, err
	}

	var (
		msgs    []notify.PushMessage
		taskIDs []string
	)
	for _, task := range tasks {
		due, err := remind.ParseDue(task.Due, loc)
		if err != nil {
			continue
		}
		created := remind.NormalizeCreated(task.CreatedMs, task.CreatedAt)
		if !remind.Matches(now, created, due) {
			continue
		}
		msgs = append(msgs, notify.PushMessage{
			Title: "Task Reminder",
			Body:  fmt.Sprintf("%q is due soon.", task.Title),
			Link:  fmt.Sprintf("%s/tasks/%s", s.baseURL, task.ID),
		})
		taskIDs = append(taskIDs, task.ID)
	}

	if len(msgs) == 0 {
		return 0, nil
	}

	// One provider attempt per user per sweep; the flags are only
	// written after it, so a failed batch is retried next period.
	if err := s.push.SendBatch(ctx, reg.Token, msgs); err != nil {
		return 0, fmt.Errorf("push batch: %w", err)
	}

	// Best effort, and deliberately not gated on per-message status:
	// the provider call succeeds or fails as a unit here.
	if err := s.taskRepo.MarkRemindersSent(ctx, taskIDs); err != nil {
		s.log.Warn("reminder sweep: flag batch failed",
			zap.Uint("user_id", reg.UserID),
			zap.Error(err))
	}

	return len(taskIDs), nil
}
