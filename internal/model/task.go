package model

import "time"

// Task represents a single item in the planner.
//
// Due is kept as the raw "{date}T{time}" (or "{date} {time}") string the
// client submitted; it is interpreted in the owner's preferred timezone
// only at sweep time. CreatedMs is the client-observed creation instant
// in epoch milliseconds; sweeps fall back to CreatedAt when it is zero.
type Task struct {
	ID          string `gorm:"primaryKey"`
	UserID      uint   `gorm:"index"`
	Title       string
	TitleLower  string `gorm:"index"` // maintained by every writer, for prefix search
	Description string
	Category    string
	Due         string
	CreatedMs   int64
	Done        bool `gorm:"default:false"`
	// Two channels, two cursor bits: ReminderSent belongs to the
	// upcoming-reminder push sweep, Notified to the overdue email sweep.
	// Both are one-way false->true, reset only when the task is edited.
	ReminderSent bool       `gorm:"default:false"`
	Notified     bool       `gorm:"default:false"`
	RemindAt     *int64     // optional user-picked client reminder, epoch ms
	CompletedAt  *time.Time // set on done, cleared when reopened
	GcalID       string     // external calendar event id, opaque
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category groups tasks by area (work, health, study, etc.).
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_user_category_name,unique"`
	Name      string `gorm:"index:idx_user_category_name,unique"`
	Color     string
	Link      string // slug derived from the name
	CreatedAt time.Time
	UpdatedAt time.Time
}
