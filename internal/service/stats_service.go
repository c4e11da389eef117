package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"todo-planner/internal/model"
	"todo-planner/internal/remind"
	"todo-planner/internal/repository"
)

const defaultCategoryColor = "#999"

var weekDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayStats is one weekday bucket of the current week.
type DayStats struct {
	Day   string `json:"day"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// CategoryStats counts tasks per (lowercased) category name.
type CategoryStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Stats aggregates everything the statistics page shows.
type Stats struct {
	Done    int `json:"done"`
	Pending int `json:"pending"`
	Overdue int `json:"overdue"`
	Today   int `json:"today"`
	Total   int `json:"total"`

	DonePercentage    int `json:"donePercentage"`
	PendingPercentage int `json:"pendingPercentage"`
	OverduePercentage int `json:"overDuePercentage"`
	TodayPercentage   int `json:"todayPercentage"`

	Weekly               []DayStats `json:"weekly"`
	WeeklyDonePercentage int        `json:"weeklyDonePercentage"`
	AverageDailyTasks    float64    `json:"averageDailyTask"`

	Categories []CategoryStats `json:"categories"`
	BestStreak int             `json:"bestStreak"`
}

// StatsService computes per-user task statistics.
type StatsService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	metaRepo     *repository.MetaRepository

	now func() time.Time
}

func NewStatsService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, metaRepo *repository.MetaRepository) *StatsService {
	return &StatsService{taskRepo: taskRepo, categoryRepo: categoryRepo, metaRepo: metaRepo, now: time.Now}
}

// ForUser loads a user's tasks and categories and computes the stats in
// the user's own timezone.
func (s *StatsService) ForUser(ctx context.Context, user *model.User) (Stats, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return Stats{}, err
	}
	categories, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return Stats{}, err
	}
	zoneName, err := s.metaRepo.Timezone(ctx, user.ID)
	if err != nil {
		return Stats{}, err
	}
	loc := remind.Zone(zoneName)
	return Compute(tasks, categories, s.now().In(loc)), nil
}

// Compute derives the full statistics set from a snapshot of tasks and
// categories. Pure, so the breakdowns are easy to test.
func Compute(tasks []model.Task, categories []model.Category, now time.Time) Stats {
	loc := now.Location()

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	endOfToday := startOfToday.AddDate(0, 0, 1).Add(-time.Millisecond)

	// Monday-based week.
	startOfWeek := startOfToday.AddDate(0, 0, -((int(startOfToday.Weekday()) + 6) % 7))
	endOfWeek := startOfWeek.AddDate(0, 0, 7).Add(-time.Millisecond)

	colorByName := make(map[string]string, len(categories))
	for _, cat := range categories {
		key := strings.ToLower(cat.Name)
		if key == "" {
			continue
		}
		color := cat.Color
		if color == "" {
			color = defaultCategoryColor
		}
		colorByName[key] = color
	}

	var st Stats
	st.Total = len(tasks)
	st.Weekly = make([]DayStats, len(weekDays))
	for i, d := range weekDays {
		st.Weekly[i].Day = d
	}

	catCounts := make(map[string]int)
	doneDates := make(map[string]struct{})

	for _, task := range tasks {
		due, dueErr := remind.ParseDue(task.Due, loc)
		hasDue := dueErr == nil

		if hasDue && !due.Before(startOfToday) && !due.After(endOfToday) {
			st.Today++
		}

		switch {
		case task.Done:
			st.Done++
			// Streaks count the day a task was finished; tasks closed
			// before the instant was recorded fall back to due.
			var finished time.Time
			if task.CompletedAt != nil {
				finished = *task.CompletedAt
			} else if hasDue {
				finished = due
			}
			if !finished.IsZero() {
				doneDates[finished.In(loc).Format("2006-01-02")] = struct{}{}
			}
		case hasDue && due.Before(now):
			st.Overdue++
		default:
			st.Pending++
		}

		if hasDue && !due.Before(startOfWeek) && !due.After(endOfWeek) {
			idx := (int(due.Weekday()) + 6) % 7
			st.Weekly[idx].Total++
			if task.Done {
				st.Weekly[idx].Done++
			}
		}

		name := strings.ToLower(strings.TrimSpace(task.Category))
		if name == "" {
			name = "uncategorised"
		}
		catCounts[name]++
	}

	st.DonePercentage = pct(st.Done, st.Total)
	st.PendingPercentage = pct(st.Pending, st.Total)
	st.OverduePercentage = pct(st.Overdue, st.Total)
	st.TodayPercentage = pct(st.Today, st.Total)

	weekTotal, weekDone := 0, 0
	for _, d := range st.Weekly {
		weekTotal += d.Total
		weekDone += d.Done
	}
	st.WeeklyDonePercentage = pct(weekDone, weekTotal)
	st.AverageDailyTasks = math.Round(float64(weekTotal)/7*10) / 10

	for name, count := range catCounts {
		color, ok := colorByName[name]
		if !ok {
			color = defaultCategoryColor
		}
		st.Categories = append(st.Categories, CategoryStats{Name: name, Count: count, Color: color})
	}
	sort.Slice(st.Categories, func(i, j int) bool {
		if st.Categories[i].Count != st.Categories[j].Count {
			return st.Categories[i].Count > st.Categories[j].Count
		}
		return st.Categories[i].Name < st.Categories[j].Name
	})

	st.BestStreak = bestStreak(doneDates)
	return st
}

func pct(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// bestStreak finds the longest run of consecutive days with at least one
// completed task.
func bestStreak(days map[string]struct{}) int {
	if len(days) == 0 {
		return 0
	}
	sorted := make([]string, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	best, streak := 1, 1
	prev, _ := time.Parse("2006-01-02", sorted[0])
	for _, iso := range sorted[1:] {
		day, _ := time.Parse("2006-01-02", iso)
		if day.Sub(prev) == 24*time.Hour {
			streak++
		} else {
			streak = 1
		}
		if streak > best {
			best = streak
		}
		prev = day
	}
	return best
}
