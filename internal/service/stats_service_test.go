package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-planner/internal/model"
)

// Wednesday 2025-03-12, noon UTC. The surrounding week runs Mon 10th
// through Sun 16th.
var statsNow = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

func statTask(title, due string, done bool, category string, completedAt time.Time) model.Task {
	task := model.Task{
		ID:       title,
		Title:    title,
		Due:      due,
		Done:     done,
		Category: category,
	}
	if !completedAt.IsZero() {
		task.CompletedAt = &completedAt
	}
	return task
}

func TestComputeCounters(t *testing.T) {
	tasks := []model.Task{
		statTask("done one", "2025-03-11T10:00", true, "work", statsNow.Add(-24*time.Hour)),
		statTask("overdue one", "2025-03-12T09:00", false, "work", time.Time{}),
		statTask("today pending", "2025-03-12T18:00", false, "", time.Time{}),
		statTask("future", "2025-03-20T18:00", false, "home", time.Time{}),
	}

	st := Compute(tasks, nil, statsNow)

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 1, st.Done)
	assert.Equal(t, 1, st.Overdue)
	assert.Equal(t, 2, st.Pending)
	// Both the overdue-today and the later-today task land in Today.
	assert.Equal(t, 2, st.Today)

	assert.Equal(t, 25, st.DonePercentage)
	assert.Equal(t, 25, st.OverduePercentage)
	assert.Equal(t, 50, st.PendingPercentage)
	assert.Equal(t, 50, st.TodayPercentage)
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(nil, nil, statsNow)
	assert.Equal(t, 0, st.Total)
	assert.Equal(t, 0, st.DonePercentage)
	assert.Equal(t, 0, st.BestStreak)
	assert.Len(t, st.Weekly, 7)
}

func TestComputeWeeklyBuckets(t *testing.T) {
	tasks := []model.Task{
		statTask("mon", "2025-03-10T10:00", true, "", statsNow),
		statTask("mon 2", "2025-03-10T11:00", false, "", time.Time{}),
		statTask("sun", "2025-03-16T10:00", false, "", time.Time{}),
		statTask("outside week", "2025-03-20T10:00", false, "", time.Time{}),
	}

	st := Compute(tasks, nil, statsNow)

	require.Len(t, st.Weekly, 7)
	assert.Equal(t, DayStats{Day: "Mon", Done: 1, Total: 2}, st.Weekly[0])
	assert.Equal(t, DayStats{Day: "Sun", Done: 0, Total: 1}, st.Weekly[6])

	// 3 of this week's tasks, 1 done.
	assert.Equal(t, 33, st.WeeklyDonePercentage)
	assert.InDelta(t, 0.4, st.AverageDailyTasks, 0.001)
}

func TestComputeCategories(t *testing.T) {
	categories := []model.Category{
		{Name: "Work", Color: "#f00"},
		{Name: "Home"},
	}
	tasks := []model.Task{
		statTask("a", "2025-03-12T18:00", false, "Work", time.Time{}),
		statTask("b", "2025-03-12T18:00", false, "work", time.Time{}),
		statTask("c", "2025-03-12T18:00", false, "", time.Time{}),
	}

	st := Compute(tasks, categories, statsNow)

	require.Len(t, st.Categories, 2)
	assert.Equal(t, CategoryStats{Name: "work", Count: 2, Color: "#f00"}, st.Categories[0])
	assert.Equal(t, CategoryStats{Name: "uncategorised", Count: 1, Color: "#999"}, st.Categories[1])
}

func TestComputeBestStreak(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 16, 0, 0, 0, time.UTC) }
	tasks := []model.Task{
		statTask("d1", "2025-03-01T10:00", true, "", day(1)),
		statTask("d2", "2025-03-02T10:00", true, "", day(2)),
		statTask("d3", "2025-03-03T10:00", true, "", day(3)),
		statTask("gap", "2025-03-05T10:00", true, "", day(5)),
		statTask("same day twice", "2025-03-05T12:00", true, "", day(5)),
	}

	st := Compute(tasks, nil, statsNow)
	assert.Equal(t, 3, st.BestStreak)
}

func TestComputeStreakFallsBackToDue(t *testing.T) {
	// Tasks closed before the completion instant was recorded only carry
	// a due date; consecutive dues still chain with stamped days.
	tasks := []model.Task{
		statTask("legacy d1", "2025-03-01T10:00", true, "", time.Time{}),
		statTask("legacy d2", "2025-03-02T10:00", true, "", time.Time{}),
		statTask("stamped d3", "2025-03-03T10:00", true, "", time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)),
	}

	st := Compute(tasks, nil, statsNow)
	assert.Equal(t, 3, st.BestStreak)
}
