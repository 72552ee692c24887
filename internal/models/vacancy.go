package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VacancyStatus string

const (
	VacancyStatusOpen    VacancyStatus = "OPEN"
	VacancyStatusFilled  VacancyStatus = "FILLED"
	VacancyStatusExpired VacancyStatus = "EXPIRED"
)

type PlayerRole string

const (
	RoleBatsman      PlayerRole = "BATSMAN"
	RoleBowler       PlayerRole = "BOWLER"
	RoleWicketKeeper PlayerRole = "WICKET_KEEPER"
	RoleAllRounder   PlayerRole = "ALL_ROUNDER"
	RoleAny          PlayerRole = "ANY"
)

func (r PlayerRole) Valid() bool {
	switch r {
	case RoleBatsman, RoleBowler, RoleWicketKeeper, RoleAllRounder, RoleAny:
		return true
	}
	return false
}

type Vacancy struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"match_id"`
	Role        PlayerRole      `gorm:"type:varchar(20);not null;default:'ANY'" json:"role"`
	CountNeeded int             `gorm:"not null" json:"count_needed"`
	FilledCount int             `gorm:"not null;default:0" json:"filled_count"`
	CostPerHead decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"cost_per_head"`
	Status      VacancyStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (v *Vacancy) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (v *Vacancy) SlotsRemaining() int {
	if v.FilledCount >= v.CountNeeded {
		return 0
	}
	return v.CountNeeded - v.FilledCount
}
