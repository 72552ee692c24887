package repository

import (
	"context"
	"time"

	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScorecardRepository interface {
	ExistsForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, scorecard *models.MatchScorecard, stats []models.PlayerMatchStat) error
}

type scorecardRepository struct {
	db *gorm.DB
}

func NewScorecardRepository(db *gorm.DB) ScorecardRepository {
	return &scorecardRepository{db: db}
}

func (r *scorecardRepository) ExistsForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.MatchScorecard{}).
		Where("match_id = ?", matchID).
		Count(&count).Error
	return count > 0, err
}

func (r *scorecardRepository) Create(ctx context.Context, tx *gorm.DB, scorecard *models.MatchScorecard, stats []models.PlayerMatchStat) error {
	if err := tx.WithContext(ctx).Create(scorecard).Error; err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&stats).Error
}

// UserStatsRepository is the cumulative statistics sink fed by scorecards.
type UserStatsRepository interface {
	Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, runs, wickets int) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	Leaderboard(ctx context.Context, limit int) ([]models.UserStats, error)
}

type userStatsRepository struct {
	db *gorm.DB
}

func NewUserStatsRepository(db *gorm.DB) UserStatsRepository {
	return &userStatsRepository{db: db}
}

// Increment adds one played match plus runs/wickets in a single upsert.
func (r *userStatsRepository) Increment(ctx context.Context, tx *gorm.DB, userID uuid.UUID, runs, wickets int) error {
	row := &models.UserStats{
		UserID:        userID,
		TotalRuns:     runs,
		TotalWickets:  wickets,
		MatchesPlayed: 1,
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_runs":     gorm.Expr("user_stats.total_runs + ?", runs),
			"total_wickets":  gorm.Expr("user_stats.total_wickets + ?", wickets),
			"matches_played": gorm.Expr("user_stats.matches_played + 1"),
			"updated_at":     time.Now(),
		}),
	}).Create(row).Error
}

func (r *userStatsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	var stats models.UserStats
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Leaderboard ranks users by runs, then wickets, then matches played.
func (r *userStatsRepository) Leaderboard(ctx context.Context, limit int) ([]models.UserStats, error) {
	var rows []models.UserStats
	err := r.db.WithContext(ctx).
		Order("total_runs DESC").
		Order("total_wickets DESC").
		Order("matches_played DESC").
		Order("user_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
