package database

import (
	"fmt"

	"github.com/fill11/match-service/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

// Migrate creates the schema. It runs on both Postgres and SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Venue{},
		&models.Match{},
		&models.Vacancy{},
		&models.EscrowTransaction{},
		&models.GroundCheckin{},
		&models.MatchPlayer{},
		&models.MatchScorecard{},
		&models.PlayerMatchStat{},
		&models.UserStats{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// Partial unique index: one HELD escrow per payer per match
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_escrow_held_payer
		ON escrow_transactions (match_id, payer_id)
		WHERE status = 'HELD'
	`).Error; err != nil {
		return fmt.Errorf("create escrow index: %w", err)
	}

	return nil
}
