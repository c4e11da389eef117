package model

import "time"

// Preference is the per-user singleton settings record. TimeZone is an
// IANA zone name used by the sweeps to interpret naive due strings; it is
// refreshed on every session start and defaults to UTC when absent.
type Preference struct {
	UserID    uint `gorm:"primaryKey"`
	TimeZone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PushRegistration is the per-user singleton push target. The client
// scheduler writes it; the upcoming-reminder sweep reads it. One token
// drives every reminder for that user.
type PushRegistration struct {
	UserID    uint `gorm:"primaryKey"`
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
