package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-planner/internal/model"
)

// MetaRepository manages the per-user singleton records: the timezone
// preference and the push registration.
type MetaRepository struct {
	db *gorm.DB
}

func NewMetaRepository(db *gorm.DB) *MetaRepository {
	return &MetaRepository{db: db}
}

// SaveTimezone upserts the user's preferred IANA timezone. Called on
// every session start.
func (r *MetaRepository) SaveTimezone(ctx context.Context, userID uint, timeZone string) error {
	pref := model.Preference{UserID: userID, TimeZone: timeZone}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"time_zone", "updated_at"}),
	}).Create(&pref).Error; err != nil {
		return fmt.Errorf("save timezone: %w", err)
	}
	return nil
}

// Timezone returns the stored zone name, or "" when the user has no
// preference yet. Sweeps treat "" as UTC.
func (r *MetaRepository) Timezone(ctx context.Context, userID uint) (string, error) {
	var pref model.Preference
	err := r.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load timezone: %w", err)
	}
	return pref.TimeZone, nil
}

// SavePushToken upserts the user's push delivery token.
func (r *MetaRepository) SavePushToken(ctx context.Context, userID uint, token string) error {
	reg := model.PushRegistration{UserID: userID, Token: token}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&reg).Error; err != nil {
		return fmt.Errorf("save push token: %w", err)
	}
	return nil
}

// ListPushRegistrations returns every opted-in user's registration.
func (r *MetaRepository) ListPushRegistrations(ctx context.Context) ([]model.PushRegistration, error) {
	var regs []model.PushRegistration
	if err := r.db.WithContext(ctx).Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("list push registrations: %w", err)
	}
	return regs, nil
}
