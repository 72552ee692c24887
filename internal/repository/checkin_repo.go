package repository

import (
	"context"

	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckinRepository interface {
	Create(ctx context.Context, tx *gorm.DB, checkin *models.GroundCheckin) error
	CountByMatchAndUser(ctx context.Context, tx *gorm.DB, matchID, userID uuid.UUID) (int64, error)
	HasSuccessful(ctx context.Context, matchID, userID uuid.UUID) (bool, error)
}

type checkinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) CheckinRepository {
	return &checkinRepository{db: db}
}

func (r *checkinRepository) Create(ctx context.Context, tx *gorm.DB, checkin *models.GroundCheckin) error {
	return tx.WithContext(ctx).Create(checkin).Error
}

func (r *checkinRepository) CountByMatchAndUser(ctx context.Context, tx *gorm.DB, matchID, userID uuid.UUID) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.GroundCheckin{}).
		Where("match_id = ? AND user_id = ?", matchID, userID).
		Count(&count).Error
	return count, err
}

func (r *checkinRepository) HasSuccessful(ctx context.Context, matchID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroundCheckin{}).
		Where("match_id = ? AND user_id = ? AND is_successful = ?", matchID, userID, true).
		Count(&count).Error
	return count > 0, err
}
