package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateMatchRequest struct {
	VenueID        uuid.UUID       `json:"venue_id"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	TotalSpots     int             `json:"total_spots"`
	MaxJoinAllowed int             `json:"max_join_allowed"`
	PricePerPlayer decimal.Decimal `json:"price_per_player"`
}

type AddVacancyRequest struct {
	Role        string          `json:"role"`
	CountNeeded int             `json:"count_needed"`
	CostPerHead decimal.Decimal `json:"cost_per_head"`
}

type JoinRequest struct {
	VacancyID uuid.UUID `json:"vacancy_id"`
}

// CheckinRequest uses pointers so a missing coordinate is distinguishable from 0.
type CheckinRequest struct {
	UserLat  *float64 `json:"user_lat"`
	UserLong *float64 `json:"user_long"`
}

type PlayerStatRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Runs    int       `json:"runs"`
	Wickets int       `json:"wickets"`
	Catches int       `json:"catches"`
}

type ScorecardRequest struct {
	WinningTeamName string              `json:"winning_team_name"`
	SummaryText     string              `json:"summary_text"`
	PlayerStats     []PlayerStatRequest `json:"player_stats"`
}
