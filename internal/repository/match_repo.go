package repository

import (
	"context"
	"time"

	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchFilter narrows List. StartsAfter keeps non-cancelled matches starting
// strictly after the given time.
type MatchFilter struct {
	StartsAfter  *time.Time
	GroundStatus *models.GroundStatus
	VenueID      *uuid.UUID
}

type MatchRepository interface {
	Create(ctx context.Context, tx *gorm.DB, match *models.Match) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]models.Match, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	IncrementSpotsFilled(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	UpsertPlayer(ctx context.Context, tx *gorm.DB, player *models.MatchPlayer) error
	FindPlayer(ctx context.Context, tx *gorm.DB, matchID, playerID uuid.UUID) (*models.MatchPlayer, error)
	MarkPlayerCheckedIn(ctx context.Context, tx *gorm.DB, matchID, playerID uuid.UUID, lat, lon float64) (int64, error)
	GetDB() *gorm.DB
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *matchRepository) Create(ctx context.Context, tx *gorm.DB, match *models.Match) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(match).Error
}

func (r *matchRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Preload("Vacancies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindByIDForUpdate acquires a row-level lock on the match within the given transaction.
func (r *matchRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// List returns matches newest start first, with their venue loaded.
func (r *matchRepository) List(ctx context.Context, filter MatchFilter) ([]models.Match, error) {
	var matches []models.Match
	q := r.db.WithContext(ctx).Preload("Venue")
	if filter.StartsAfter != nil {
		q = q.Where("start_time > ? AND is_cancelled = ?", *filter.StartsAfter, false)
	}
	if filter.GroundStatus != nil {
		q = q.Where("ground_status = ?", *filter.GroundStatus)
	}
	if filter.VenueID != nil {
		q = q.Where("venue_id = ?", *filter.VenueID)
	}
	if err := q.Order("start_time DESC").Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	return tx.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// IncrementSpotsFilled bumps spots_filled only while the overbooking ceiling has room.
func (r *matchRepository) IncrementSpotsFilled(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND spots_filled < max_join_allowed", id).
		Update("spots_filled", gorm.Expr("spots_filled + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *matchRepository) UpsertPlayer(ctx context.Context, tx *gorm.DB, player *models.MatchPlayer) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"final_amount_paid"}),
	}).Create(player).Error
}

func (r *matchRepository) FindPlayer(ctx context.Context, tx *gorm.DB, matchID, playerID uuid.UUID) (*models.MatchPlayer, error) {
	var player models.MatchPlayer
	err := tx.WithContext(ctx).
		Where("match_id = ? AND player_id = ?", matchID, playerID).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *matchRepository) MarkPlayerCheckedIn(ctx context.Context, tx *gorm.DB, matchID, playerID uuid.UUID, lat, lon float64) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.MatchPlayer{}).
		Where("match_id = ? AND player_id = ?", matchID, playerID).
		Updates(map[string]any{
			"has_checked_in": true,
			"check_in_lat":   lat,
			"check_in_long":  lon,
		})
	return res.RowsAffected, res.Error
}
