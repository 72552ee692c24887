package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroundCheckin logs one GPS verification attempt at the venue.
type GroundCheckin struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID        uuid.UUID `gorm:"type:uuid;not null;index:idx_checkin_match_user" json:"match_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_checkin_match_user" json:"user_id"`
	UserLat        float64   `gorm:"not null" json:"user_lat"`
	UserLong       float64   `gorm:"not null" json:"user_long"`
	DistanceMeters float64   `gorm:"not null" json:"distance_meters"`
	IsSuccessful   bool      `gorm:"not null;default:false" json:"is_successful"`
	CreatedAt      time.Time `json:"created_at"`
}

func (c *GroundCheckin) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
