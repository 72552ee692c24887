package repository

import (
	"context"

	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VenueRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Venue, error)
	FindWithCoordinates(ctx context.Context) ([]models.Venue, error)
	Upsert(ctx context.Context, venue *models.Venue) error
	GetDB() *gorm.DB
}

type venueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) VenueRepository {
	return &venueRepository{db: db}
}

func (r *venueRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *venueRepository) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Venue, error) {
	var venue models.Venue
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&venue).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepository) FindWithCoordinates(ctx context.Context) ([]models.Venue, error) {
	var venues []models.Venue
	err := r.db.WithContext(ctx).
		Where("gps_lat IS NOT NULL AND gps_long IS NOT NULL").
		Find(&venues).Error
	return venues, err
}

// Upsert inserts the venue or refreshes it on conflict (same ID from the venue owner).
func (r *venueRepository) Upsert(ctx context.Context, venue *models.Venue) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "gps_lat", "gps_long", "avg_cost_per_hour", "is_verified", "updated_at"}),
	}).Create(venue).Error
}
