package model

import "time"

// User stores account metadata for one person using the planner.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the first name, or a neutral fallback used in
// notification templates.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return "there"
}
