package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"todo-planner/internal/model"
	"todo-planner/internal/notify"
	"todo-planner/internal/remind"
	"todo-planner/internal/repository"
)

const (
	emailAttempts     = 3
	emailRetryBackoff = 2 * time.Second // multiplied by the attempt number
)

// OverdueService is the overdue-email sweep: for every user, every task
// that is not done, not yet notified and past due gets one email, after
// which its notified flag is set. A send that fails after retries leaves
// the flag unset so the next sweep picks the task up again.
type OverdueService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
	metaRepo *repository.MetaRepository
	email    notify.EmailSender
	baseURL  string
	log      *zap.Logger

	// sleep is swapped out in tests to keep retries instant.
	sleep func(time.Duration)
	now   func() time.Time
}

func NewOverdueService(
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	metaRepo *repository.MetaRepository,
	email notify.EmailSender,
	baseURL string,
	log *zap.Logger,
) *OverdueService {
	return &OverdueService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		metaRepo: metaRepo,
		email:    email,
		baseURL:  baseURL,
		log:      log,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Sweep runs one full pass and returns the number of emails sent.
// Per-task failures are logged and skipped; a single bad task never
// aborts the rest of the sweep.
func (s *OverdueService) Sweep(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	now := s.now()
	sent := 0

	for _, user := range users {
		n, err := s.sweepUser(ctx, user, now)
		if err != nil {
			s.log.Warn("overdue sweep: user skipped",
				zap.Uint("user_id", user.ID),
				zap.Error(err))
			continue
		}
		sent += n
	}

	return sent, nil
}

func (s *OverdueService) sweepUser(ctx context.Context, user model.User, now time.Time) (int, error) {
	zoneName, err := s.metaRepo.Timezone(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	loc := remind.Zone(zoneName)

	tasks, err := s.taskRepo.ListOverdueCandidates(ctx, user.ID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, task := range tasks {
		due, err := remind.ParseDue(task.Due, loc)
		if err != nil {
			// Malformed due date: the task simply never matches.
			s.log.Warn("overdue sweep: unparseable due date",
				zap.String("task_id", task.ID),
				zap.String("due", task.Due))
			continue
		}
		if !due.Before(now) {
			continue
		}

		if err := s.sendWithRetry(ctx, user, task, due); err != nil {
			// Flag stays unset; the next sweep retries this task.
			s.log.Warn("overdue sweep: email failed, task left unflagged",
				zap.String("task_id", task.ID),
				zap.Error(err))
			continue
		}

		if err := s.taskRepo.MarkNotified(ctx, task.ID); err != nil {
			s.log.Warn("overdue sweep: flag write failed",
				zap.String("task_id", task.ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

// sendWithRetry attempts delivery up to emailAttempts times with linearly
// increasing backoff.
func (s *OverdueService) sendWithRetry(ctx context.Context, user model.User, task model.Task, due time.Time) error {
	msg := notify.EmailMessage{
		To:        user.Email,
		FirstName: user.DisplayName(),
		TaskTitle: task.Title,
		DueDate:   due.Format("Jan 2, 2006 3:04 PM"),
		Link:      fmt.Sprintf("%s/tasks/%s", s.baseURL, task.ID),
	}

	var lastErr error
	for attempt := 1; attempt <= emailAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = s.email.Send(ctx, msg); lastErr == nil {
			return nil
		}
		if attempt < emailAttempts {
			s.sleep(time.Duration(attempt) * emailRetryBackoff)
		}
	}
	return fmt.Errorf("after %d attempts: %w", emailAttempts, lastErr)
}
