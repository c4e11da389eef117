package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"todo-planner/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID uint, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser returns every task for a user, newest first by the
// client-observed creation instant.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_ms DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SearchByPrefix matches tasks whose lowercased title starts with the
// given prefix. The prefix is expected to be lowercased by the caller;
// title_lower exists exactly for this query.
func (r *TaskRepository) SearchByPrefix(ctx context.Context, userID uint, prefix string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND title_lower LIKE ?", userID, prefix+"%").
		Order("created_ms DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListOverdueCandidates returns a user's tasks that are neither done nor
// email-notified. The due comparison itself happens in the sweep: due is
// a display string and must be parsed per user timezone.
func (r *TaskRepository) ListOverdueCandidates(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND done = ? AND notified = ?", userID, false, false).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListReminderCandidates returns a user's tasks still awaiting their
// upcoming-reminder push.
func (r *TaskRepository) ListReminderCandidates(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND done = ? AND reminder_sent = ?", userID, false, false).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkNotified flips the overdue-email idempotency flag. One-way: the
// flag only ever goes false -> true here.
func (r *TaskRepository) MarkNotified(ctx context.Context, taskID string) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("notified", true).Error; err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// MarkRemindersSent flips the push-reminder flag for a batch of one
// user's tasks in a single transaction.
func (r *TaskRepository) MarkRemindersSent(ctx context.Context, taskIDs []string) error {
	if len(taskIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id IN ?", taskIDs).
		Update("reminder_sent", true).Error; err != nil {
		return fmt.Errorf("mark reminders sent: %w", err)
	}
	return nil
}

// Update saves a full task record.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// SetDone toggles the completion state. The completion instant is
// recorded alongside it and cleared again when the task is reopened.
func (r *TaskRepository) SetDone(ctx context.Context, userID uint, taskID string, done bool, completedAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id = ?", userID, taskID).
		Updates(map[string]any{"done": done, "completed_at": completedAt})
	if res.Error != nil {
		return fmt.Errorf("set done: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task for the given user.
func (r *TaskRepository) Delete(ctx context.Context, userID uint, taskID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
