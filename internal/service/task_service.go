package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/model"
	"todo-planner/internal/remind"
	"todo-planner/internal/repository"
)

// TaskInput represents data required to create or edit a task.
type TaskInput struct {
	Title       string
	Description string
	Category    string
	Due         string // "{date}T{time}" or "{date} {time}"
	RemindAt    *int64 // optional client reminder, epoch ms
	GcalID      string
}

// TaskFilter narrows and pages a task listing.
type TaskFilter struct {
	Search   string // titleLower prefix
	Filter   string // "done", "notDone" or ""
	Page     int
	PageSize int
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository

	now func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, now: time.Now}
}

// CreateTask validates input and stores a new task with both
// notification flags unarmed.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	if input.Category != "" {
		if _, err := s.categoryRepo.GetOrCreate(ctx, user.ID, input.Category, "", Slugify(input.Category)); err != nil {
			return nil, err
		}
	}

	task := model.Task{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Title:       input.Title,
		TitleLower:  strings.ToLower(strings.TrimSpace(input.Title)),
		Description: input.Description,
		Category:    input.Category,
		Due:         input.Due,
		CreatedMs:   s.now().UnixMilli(),
		RemindAt:    input.RemindAt,
		GcalID:      input.GcalID,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// EditTask replaces a task's user-editable fields. Both notification
// flags are reset: the task's timing semantics changed, so each channel
// must re-evaluate it.
func (s *TaskService) EditTask(ctx context.Context, user *model.User, taskID string, input TaskInput) (*model.Task, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Category != "" && input.Category != task.Category {
		if _, err := s.categoryRepo.GetOrCreate(ctx, user.ID, input.Category, "", Slugify(input.Category)); err != nil {
			return nil, err
		}
	}

	task.Title = input.Title
	task.TitleLower = strings.ToLower(strings.TrimSpace(input.Title))
	task.Description = input.Description
	task.Category = input.Category
	task.Due = input.Due
	task.RemindAt = input.RemindAt
	if input.GcalID != "" {
		task.GcalID = input.GcalID
	}
	task.ReminderSent = false
	task.Notified = false

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks applies search, completion filter and pagination.
func (s *TaskService) ListTasks(ctx context.Context, user *model.User, f TaskFilter) ([]model.Task, int, error) {
	var (
		tasks []model.Task
		err   error
	)
	if f.Search != "" {
		tasks, err = s.taskRepo.SearchByPrefix(ctx, user.ID, strings.ToLower(strings.TrimSpace(f.Search)))
	} else {
		tasks, err = s.taskRepo.ListByUser(ctx, user.ID)
	}
	if err != nil {
		return nil, 0, err
	}

	switch f.Filter {
	case "done":
		tasks = filterTasks(tasks, func(t model.Task) bool { return t.Done })
	case "notDone":
		tasks = filterTasks(tasks, func(t model.Task) bool { return !t.Done })
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedMs > tasks[j].CreatedMs })

	total := len(tasks)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start >= total {
			return []model.Task{}, total, nil
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		tasks = tasks[start:end]
	}
	return tasks, total, nil
}

// ToggleDone flips a task's completion state, stamping the completion
// instant when it closes and clearing it when it reopens.
func (s *TaskService) ToggleDone(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	var completedAt *time.Time
	if !task.Done {
		t := s.now()
		completedAt = &t
	}
	if err := s.taskRepo.SetDone(ctx, user.ID, taskID, !task.Done, completedAt); err != nil {
		return nil, err
	}
	task.Done = !task.Done
	task.CompletedAt = completedAt
	return task, nil
}

// DeleteTask removes a task completely. No other entity cascades.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID string) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}

func (s *TaskService) validate(input TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("title is required")
	}
	due, err := remind.ParseDue(input.Due, time.UTC)
	if err != nil {
		return fmt.Errorf("due date: %w", err)
	}
	if input.RemindAt != nil && *input.RemindAt >= due.UnixMilli() {
		return fmt.Errorf("reminder must be before the task's due date")
	}
	return nil
}

func filterTasks(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Slugify derives a category link slug from its name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(slug, " ", "-")
}
