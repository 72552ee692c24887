package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchScorecard struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"match_id"`
	WinningTeamName string    `gorm:"size:255" json:"winning_team_name"`
	SummaryText     string    `json:"summary_text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *MatchScorecard) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type PlayerMatchStat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stat_match_user" json:"match_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stat_match_user" json:"user_id"`
	Runs      int       `gorm:"not null;default:0" json:"runs"`
	Wickets   int       `gorm:"not null;default:0" json:"wickets"`
	Catches   int       `gorm:"not null;default:0" json:"catches"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *PlayerMatchStat) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UserStats holds cumulative career numbers per user.
type UserStats struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalRuns     int       `gorm:"not null;default:0" json:"total_runs"`
	TotalWickets  int       `gorm:"not null;default:0" json:"total_wickets"`
	MatchesPlayed int       `gorm:"not null;default:0" json:"matches_played"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}
