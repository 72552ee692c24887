package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Venue struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Address        string          `json:"address"`
	GPSLat         *float64        `json:"gps_lat,omitempty"`
	GPSLong        *float64        `json:"gps_long,omitempty"`
	AvgCostPerHour decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"avg_cost_per_hour"`
	IsVerified     bool            `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (v *Venue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Coordinates reports the venue position, ok is false when either axis is unset.
func (v *Venue) Coordinates() (lat, lon float64, ok bool) {
	if v.GPSLat == nil || v.GPSLong == nil {
		return 0, 0, false
	}
	return *v.GPSLat, *v.GPSLong, true
}
