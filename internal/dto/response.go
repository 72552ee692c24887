package dto

import (
	"time"

	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VacancyResponse struct {
	ID             uuid.UUID            `json:"id"`
	MatchID        uuid.UUID            `json:"match_id"`
	Role           models.PlayerRole    `json:"role"`
	CountNeeded    int                  `json:"count_needed"`
	FilledCount    int                  `json:"filled_count"`
	SlotsRemaining int                  `json:"slots_remaining"`
	CostPerHead    decimal.Decimal      `json:"cost_per_head"`
	Status         models.VacancyStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
}

type MatchResponse struct {
	ID             uuid.UUID           `json:"id"`
	CaptainID      uuid.UUID           `json:"captain_id"`
	VenueID        uuid.UUID           `json:"venue_id"`
	VenueName      string              `json:"venue_name,omitempty"`
	StartTime      time.Time           `json:"start_time"`
	EndTime        time.Time           `json:"end_time"`
	TotalSpots     int                 `json:"total_spots"`
	SpotsFilled    int                 `json:"spots_filled"`
	MaxJoinAllowed int                 `json:"max_join_allowed"`
	PricePerPlayer decimal.Decimal     `json:"price_per_player"`
	Status         models.MatchStatus  `json:"status"`
	GroundStatus   models.GroundStatus `json:"ground_status"`
	IsCancelled    bool                `json:"is_cancelled"`
	IsFull         bool                `json:"is_full"`
	Vacancies      []VacancyResponse   `json:"vacancies,omitempty"`
}

type EscrowResponse struct {
	ID             uuid.UUID           `json:"id"`
	MatchID        uuid.UUID           `json:"match_id"`
	PayerID        uuid.UUID           `json:"payer_id"`
	VacancyID      *uuid.UUID          `json:"vacancy_id,omitempty"`
	Amount         decimal.Decimal     `json:"amount"`
	Status         models.EscrowStatus `json:"status"`
	GatewayOrderID string              `json:"gateway_order_id,omitempty"`
	ReleasedAt     *time.Time          `json:"released_at,omitempty"`
	RefundedAt     *time.Time          `json:"refunded_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type JoinResponse struct {
	Escrow         EscrowResponse  `json:"escrow"`
	Vacancy        VacancyResponse `json:"vacancy"`
	SlotsRemaining int             `json:"slots_remaining"`
	OrderID        string          `json:"order_id"`
}

type CheckinResponse struct {
	Success        bool                 `json:"success"`
	Message        string               `json:"message"`
	DistanceMeters float64              `json:"distance_meters"`
	DistanceNeeded *float64             `json:"distance_needed,omitempty"`
	CheckIn        models.GroundCheckin `json:"check_in"`
}

type CancelResponse struct {
	Message          string `json:"message"`
	RefundsProcessed int64  `json:"refunds_processed"`
	VacanciesExpired int64  `json:"vacancies_expired"`
}

type ScorecardResponse struct {
	ScorecardID     uuid.UUID `json:"scorecard_id"`
	MatchID         uuid.UUID `json:"match_id"`
	WinningTeamName string    `json:"winning_team_name"`
	Released        int64     `json:"released"`
}

type ParticipationResponse struct {
	IsParticipant bool                 `json:"is_participant"`
	HasCheckedIn  bool                 `json:"has_checked_in"`
	EscrowStatus  *models.EscrowStatus `json:"escrow_status"`
	AmountHeld    decimal.Decimal      `json:"amount_held"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToVacancyResponse(v *models.Vacancy) VacancyResponse {
	return VacancyResponse{
		ID:             v.ID,
		MatchID:        v.MatchID,
		Role:           v.Role,
		CountNeeded:    v.CountNeeded,
		FilledCount:    v.FilledCount,
		SlotsRemaining: v.SlotsRemaining(),
		CostPerHead:    v.CostPerHead,
		Status:         v.Status,
		CreatedAt:      v.CreatedAt,
	}
}

func ToMatchResponse(m *models.Match) MatchResponse {
	resp := MatchResponse{
		ID:             m.ID,
		CaptainID:      m.CaptainID,
		VenueID:        m.VenueID,
		StartTime:      m.StartTime,
		EndTime:        m.EndTime,
		TotalSpots:     m.TotalSpots,
		SpotsFilled:    m.SpotsFilled,
		MaxJoinAllowed: m.MaxJoinAllowed,
		PricePerPlayer: m.PricePerPlayer,
		Status:         m.Status,
		GroundStatus:   m.GroundStatus,
		IsCancelled:    m.IsCancelled,
		IsFull:         m.IsFull(),
	}
	if m.Venue != nil {
		resp.VenueName = m.Venue.Name
	}
	for i := range m.Vacancies {
		resp.Vacancies = append(resp.Vacancies, ToVacancyResponse(&m.Vacancies[i]))
	}
	return resp
}

func ToEscrowResponse(e *models.EscrowTransaction) EscrowResponse {
	return EscrowResponse{
		ID:             e.ID,
		MatchID:        e.MatchID,
		PayerID:        e.PayerID,
		VacancyID:      e.VacancyID,
		Amount:         e.Amount,
		Status:         e.Status,
		GatewayOrderID: e.GatewayOrderID,
		ReleasedAt:     e.ReleasedAt,
		RefundedAt:     e.RefundedAt,
		CreatedAt:      e.CreatedAt,
	}
}

func ToJoinResponse(r *service.JoinResult) JoinResponse {
	return JoinResponse{
		Escrow:         ToEscrowResponse(r.Escrow),
		Vacancy:        ToVacancyResponse(r.Vacancy),
		SlotsRemaining: r.SlotsRemaining,
		OrderID:        r.OrderID,
	}
}

func ToParticipationResponse(p *service.Participation) ParticipationResponse {
	return ParticipationResponse{
		IsParticipant: p.IsParticipant,
		HasCheckedIn:  p.HasCheckedIn,
		EscrowStatus:  p.EscrowStatus,
		AmountHeld:    p.AmountHeld,
	}
}
