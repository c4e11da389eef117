package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-planner/internal/model"
	"todo-planner/internal/notify"
	"todo-planner/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, FirstName: "Nat"}
	require.NoError(t, db.Create(user).Error)
	return user
}

type seedOpts struct {
	due          string
	createdMs    int64
	done         bool
	notified     bool
	reminderSent bool
}

func seedTask(t *testing.T, db *gorm.DB, userID uint, title string, opts seedOpts) *model.Task {
	t.Helper()
	task := &model.Task{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		TitleLower:   strings.ToLower(title),
		Due:          opts.due,
		CreatedMs:    opts.createdMs,
		Done:         opts.done,
		Notified:     opts.notified,
		ReminderSent: opts.reminderSent,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

// fakeEmail records sends. It can fail the first N attempts, or fail
// permanently for specific task titles.
type fakeEmail struct {
	mu         sync.Mutex
	sent       []notify.EmailMessage
	failNext   int
	failTitles map[string]bool
	attempts   int
}

func (f *fakeEmail) Send(_ context.Context, msg notify.EmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failTitles[msg.TaskTitle] {
		return fmt.Errorf("provider unavailable")
	}
	if f.failNext > 0 {
		f.failNext--
		return fmt.Errorf("provider unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakePush records batches per token and can fail specific tokens.
type fakePush struct {
	mu         sync.Mutex
	batches    map[string][][]notify.PushMessage
	failTokens map[string]bool
}

func newFakePush() *fakePush {
	return &fakePush{
		batches:    make(map[string][][]notify.PushMessage),
		failTokens: make(map[string]bool),
	}
}

func (f *fakePush) SendBatch(_ context.Context, token string, msgs []notify.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTokens[token] {
		return fmt.Errorf("provider rejected token")
	}
	f.batches[token] = append(f.batches[token], msgs)
	return nil
}

func (f *fakePush) batchCount(token string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches[token])
}

func (f *fakePush) lastBatch(token string) []notify.PushMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.batches[token])
	if n == 0 {
		return nil
	}
	return f.batches[token][n-1]
}

// dueString formats an instant the way the client stores it.
func dueString(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}
