package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusConfirmed MatchStatus = "CONFIRMED"
	MatchStatusOngoing   MatchStatus = "ONGOING"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

type GroundStatus string

const (
	GroundStatusPending GroundStatus = "PENDING"
	GroundStatusSecured GroundStatus = "SECURED"
	GroundStatusBooked  GroundStatus = "BOOKED"
)

// Valid state transitions: from -> []to
var ValidMatchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:   {MatchStatusConfirmed, MatchStatusOngoing, MatchStatusCancelled},
	MatchStatusConfirmed: {MatchStatusOngoing, MatchStatusCompleted, MatchStatusCancelled},
	MatchStatusOngoing:   {MatchStatusCompleted, MatchStatusCancelled},
	MatchStatusCompleted: {},
	MatchStatusCancelled: {},
}

func IsValidMatchTransition(from, to MatchStatus) bool {
	allowed, ok := ValidMatchTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

var groundStatusRank = map[GroundStatus]int{
	GroundStatusPending: 0,
	GroundStatusSecured: 1,
	GroundStatusBooked:  2,
}

// CanAdvanceGround reports whether moving from -> to is an upgrade.
// Ground status never moves backwards.
func CanAdvanceGround(from, to GroundStatus) bool {
	return groundStatusRank[to] > groundStatusRank[from]
}

type Match struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CaptainID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"captain_id"`
	VenueID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"venue_id"`
	StartTime      time.Time       `gorm:"not null;index" json:"start_time"`
	EndTime        time.Time       `gorm:"not null" json:"end_time"`
	TotalSpots     int             `gorm:"not null;default:16" json:"total_spots"`
	SpotsFilled    int             `gorm:"not null;default:0" json:"spots_filled"`
	MaxJoinAllowed int             `gorm:"not null;default:20" json:"max_join_allowed"`
	PricePerPlayer decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price_per_player"`
	Status         MatchStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	GroundStatus   GroundStatus    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"ground_status"`
	IsCancelled    bool            `gorm:"not null;default:false" json:"is_cancelled"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Venue     *Venue    `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Vacancies []Vacancy `gorm:"foreignKey:MatchID" json:"vacancies,omitempty"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CanAcceptMorePlayers reports whether the overbooking ceiling still has room.
func (m *Match) CanAcceptMorePlayers() bool {
	return m.SpotsFilled < m.MaxJoinAllowed
}

func (m *Match) IsFull() bool {
	return m.SpotsFilled >= m.TotalSpots
}

// IsJoinable reports whether players may still claim slots.
func (m *Match) IsJoinable() bool {
	if m.IsCancelled {
		return false
	}
	return m.Status == MatchStatusPending || m.Status == MatchStatusConfirmed
}

// MatchPlayer is a confirmed roster entry created when a join succeeds.
type MatchPlayer struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_match_player" json:"match_id"`
	PlayerID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_match_player" json:"player_id"`
	FinalAmountPaid decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"final_amount_paid"`
	HasCheckedIn    bool            `gorm:"not null;default:false" json:"has_checked_in"`
	CheckInLat      *float64        `json:"check_in_lat,omitempty"`
	CheckInLong     *float64        `json:"check_in_long,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (p *MatchPlayer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
