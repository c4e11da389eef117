package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-planner/internal/repository"
)

func TestCategoryNamesScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	first := seedUser(t, db, "first@example.com")
	second := seedUser(t, db, "second@example.com")
	svc := NewCategoryService(repository.NewCategoryRepository(db))

	mine, err := svc.Create(context.Background(), first, "Work", "#f00")
	require.NoError(t, err)

	// Another user reusing the name gets their own independent row.
	theirs, err := svc.Create(context.Background(), second, "Work", "#0f0")
	require.NoError(t, err)
	assert.NotEqual(t, mine.ID, theirs.ID)
	assert.Equal(t, second.ID, theirs.UserID)
	assert.Equal(t, "#0f0", theirs.Color)

	// Within one user the name still dedupes to the existing row.
	again, err := svc.Create(context.Background(), first, "Work", "#00f")
	require.NoError(t, err)
	assert.Equal(t, mine.ID, again.ID)
	assert.Equal(t, "#f00", again.Color)
}

func TestCreateTaskWithCategoryNameUsedByAnotherUser(t *testing.T) {
	db := newTestDB(t)
	first := seedUser(t, db, "first@example.com")
	second := seedUser(t, db, "second@example.com")
	svc := newTaskService(db)

	_, err := svc.CreateTask(context.Background(), first, TaskInput{
		Title:    "plan sprint",
		Due:      "2030-01-02T15:04",
		Category: "Work",
	})
	require.NoError(t, err)

	task, err := svc.CreateTask(context.Background(), second, TaskInput{
		Title:    "file taxes",
		Due:      "2030-01-02T15:04",
		Category: "Work",
	})
	require.NoError(t, err)
	assert.Equal(t, "Work", task.Category)
}
