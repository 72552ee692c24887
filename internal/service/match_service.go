package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fill11/match-service/internal/events"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderCreator is the external payment-order service.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (string, error)
}

type CreateMatchInput struct {
	CaptainID      uuid.UUID
	VenueID        uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	TotalSpots     int
	MaxJoinAllowed int // 0 means TotalSpots
	PricePerPlayer decimal.Decimal
}

// ListMatchesInput mirrors the discovery filters. Upcoming keeps matches that
// have not started and are not cancelled.
type ListMatchesInput struct {
	Upcoming     bool
	GroundStatus *models.GroundStatus
	VenueID      *uuid.UUID
}

type PlayerStatInput struct {
	UserID  uuid.UUID
	Runs    int
	Wickets int
	Catches int
}

type ScorecardInput struct {
	WinningTeamName string
	SummaryText     string
	PlayerStats     []PlayerStatInput
}

type JoinResult struct {
	Escrow         *models.EscrowTransaction
	Vacancy        *models.Vacancy
	SlotsRemaining int
	OrderID        string
}

type CancelResult struct {
	Match            *models.Match
	RefundsProcessed int64
	VacanciesExpired int64
}

type ScorecardResult struct {
	Scorecard *models.MatchScorecard
	Released  int64
}

type Participation struct {
	IsParticipant bool
	HasCheckedIn  bool
	EscrowStatus  *models.EscrowStatus
	AmountHeld    decimal.Decimal
}

type MatchService interface {
	CreateMatch(ctx context.Context, in CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListMatches(ctx context.Context, in ListMatchesInput) ([]models.Match, error)
	Confirm(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error)
	Start(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error)
	AddVacancy(ctx context.Context, matchID, actorID uuid.UUID, in AddVacancyInput) (*models.Vacancy, error)
	ListVacancies(ctx context.Context, matchID uuid.UUID, filter repository.VacancyFilter) ([]models.Vacancy, error)
	Join(ctx context.Context, matchID, userID, vacancyID uuid.UUID) (*JoinResult, error)
	CheckIn(ctx context.Context, matchID, userID uuid.UUID, lat, lon float64) (*CheckinResult, error)
	Cancel(ctx context.Context, matchID, actorID uuid.UUID) (*CancelResult, error)
	SubmitScorecard(ctx context.Context, matchID, actorID uuid.UUID, in ScorecardInput) (*ScorecardResult, error)
	Participation(ctx context.Context, matchID, userID uuid.UUID) (*Participation, error)
}

type MatchServiceDeps struct {
	MatchRepo     repository.MatchRepository
	VenueRepo     repository.VenueRepository
	VacancyRepo   repository.VacancyRepository
	EscrowRepo    repository.EscrowRepository
	CheckinRepo   repository.CheckinRepository
	ScorecardRepo repository.ScorecardRepository
	StatsRepo     repository.UserStatsRepository

	Ledger   VacancyLedger
	Escrow   EscrowEngine
	Verifier CheckinVerifier

	Orders        OrderCreator // nil: always placeholder ids
	OrderFallback bool
	Publisher     events.Publisher
	Log           *zap.Logger
}

type matchService struct {
	MatchServiceDeps
	now func() time.Time
}

func NewMatchService(deps MatchServiceDeps) MatchService {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &matchService{MatchServiceDeps: deps, now: time.Now}
}

func (s *matchService) CreateMatch(ctx context.Context, in CreateMatchInput) (*models.Match, error) {
	if in.TotalSpots <= 0 {
		return nil, invalidArgument("total_spots must be positive")
	}
	if in.MaxJoinAllowed == 0 {
		in.MaxJoinAllowed = in.TotalSpots
	}
	if in.MaxJoinAllowed < in.TotalSpots {
		return nil, invalidArgument("max_join_allowed must be at least total_spots")
	}
	if in.PricePerPlayer.IsNegative() {
		return nil, invalidArgument("price_per_player must not be negative")
	}
	if !in.StartTime.After(s.now()) {
		return nil, invalidArgument("start_time must be in the future")
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, invalidArgument("end_time must be after start_time")
	}

	match := &models.Match{
		CaptainID:      in.CaptainID,
		VenueID:        in.VenueID,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		TotalSpots:     in.TotalSpots,
		MaxJoinAllowed: in.MaxJoinAllowed,
		PricePerPlayer: in.PricePerPlayer,
		Status:         models.MatchStatusPending,
		GroundStatus:   models.GroundStatusPending,
	}

	err := s.MatchRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.VenueRepo.FindByID(ctx, tx, in.VenueID); err != nil {
			return notFound(err, ErrVenueNotFound)
		}
		return s.MatchRepo.Create(ctx, tx, match)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("match created", zap.String("match_id", match.ID.String()), zap.String("captain_id", in.CaptainID.String()))
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, err := s.MatchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrMatchNotFound)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, in ListMatchesInput) ([]models.Match, error) {
	filter := repository.MatchFilter{VenueID: in.VenueID}
	if in.GroundStatus != nil {
		switch *in.GroundStatus {
		case models.GroundStatusPending, models.GroundStatusSecured, models.GroundStatusBooked:
		default:
			return nil, invalidArgument("unknown ground_status %q", *in.GroundStatus)
		}
		filter.GroundStatus = in.GroundStatus
	}
	if in.Upcoming {
		now := s.now()
		filter.StartsAfter = &now
	}
	return s.MatchRepo.List(ctx, filter)
}

func (s *matchService) Confirm(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error) {
	return s.advance(ctx, matchID, actorID, models.MatchStatusConfirmed)
}

func (s *matchService) Start(ctx context.Context, matchID, actorID uuid.UUID) (*models.Match, error) {
	return s.advance(ctx, matchID, actorID, models.MatchStatusOngoing)
}

// advance is a captain-only status change along ValidMatchTransitions.
func (s *matchService) advance(ctx context.Context, matchID, actorID uuid.UUID, to models.MatchStatus) (*models.Match, error) {
	var result *models.Match

	err := s.MatchRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := s.MatchRepo.FindByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return notFound(err, ErrMatchNotFound)
		}
		if match.CaptainID != actorID {
			return ErrNotCaptain
		}
		if !models.IsValidMatchTransition(match.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidMatchTransition, match.Status, to)
		}
		if err := s.MatchRepo.Update(ctx, tx, matchID, map[string]any{"status": to}); err != nil {
			return err
		}
		match.Status = to
		result = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("match status changed", zap.String("match_id", matchID.String()), zap.String("status", string(to)))
	return result, nil
}

func (s *matchService) AddVacancy(ctx context.Context, matchID, actorID uuid.UUID, in AddVacancyInput) (*models.Vacancy, error) {
	return s.Ledger.AddVacancy(ctx, matchID, actorID, in)
}

func (s *matchService) ListVacancies(ctx context.Context, matchID uuid.UUID, filter repository.VacancyFilter) ([]models.Vacancy, error) {
	return s.Ledger.ListVacancies(ctx, matchID, filter)
}

// Join claims a slot and holds the payment in one transaction. The payment
// order is created first, outside the transaction.
func (s *matchService) Join(ctx context.Context, matchID, userID, vacancyID uuid.UUID) (*JoinResult, error) {
	vacancy, err := s.VacancyRepo.FindByID(ctx, vacancyID, matchID)
	if err != nil {
		return nil, notFound(err, ErrVacancyNotFound)
	}

	orderID, err := s.createOrder(ctx, vacancy.CostPerHead, matchID, userID)
	if err != nil {
		return nil, err
	}

	result := &JoinResult{OrderID: orderID}

	err = s.MatchRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the match row
		match, err := s.MatchRepo.FindByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return notFound(err, ErrMatchNotFound)
		}
		if !match.IsJoinable() {
			return ErrMatchNotJoinable
		}

		// 2. Overbooking ceiling
		ok, err := s.MatchRepo.IncrementSpotsFilled(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrMatchFull
		}

		// 3. Claim the slot
		claimed, remaining, err := s.Ledger.ClaimSlot(ctx, tx, vacancyID, matchID)
		if err != nil {
			return err
		}

		// 4. Hold the money
		escrow, err := s.Escrow.Hold(ctx, tx, HoldInput{
			MatchID:        matchID,
			PayerID:        userID,
			VacancyID:      &claimed.ID,
			Amount:         claimed.CostPerHead,
			GatewayOrderID: orderID,
		})
		if err != nil {
			return err
		}

		// 5. Roster entry
		if err := s.MatchRepo.UpsertPlayer(ctx, tx, &models.MatchPlayer{
			MatchID:         matchID,
			PlayerID:        userID,
			FinalAmountPaid: claimed.CostPerHead,
		}); err != nil {
			return err
		}

		result.Escrow = escrow
		result.Vacancy = claimed
		result.SlotsRemaining = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("player joined",
		zap.String("match_id", matchID.String()),
		zap.String("user_id", userID.String()),
		zap.String("escrow_id", result.Escrow.ID.String()),
		zap.Int("slots_remaining", result.SlotsRemaining),
	)
	events.Emit(ctx, s.Publisher, s.Log, events.Event{
		Type: events.EventMatchJoined,
		Payload: map[string]any{
			"match_id":   matchID.String(),
			"user_id":    userID.String(),
			"vacancy_id": vacancyID.String(),
			"escrow_id":  result.Escrow.ID.String(),
			"amount":     result.Escrow.Amount.String(),
		},
	})
	return result, nil
}

func (s *matchService) createOrder(ctx context.Context, amount decimal.Decimal, matchID, userID uuid.UUID) (string, error) {
	if s.Orders == nil {
		return placeholderOrderID(), nil
	}

	receipt := fmt.Sprintf("join_%s_%s", matchID.String()[:8], userID.String()[:8])
	orderID, err := s.Orders.CreateOrder(ctx, amount, receipt)
	if err == nil {
		return orderID, nil
	}

	if !s.OrderFallback {
		s.Log.Error("payment order failed", zap.String("match_id", matchID.String()), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPaymentOrderFailed, err)
	}

	placeholder := placeholderOrderID()
	s.Log.Warn("payment order failed, using placeholder",
		zap.String("match_id", matchID.String()),
		zap.String("order_id", placeholder),
		zap.Error(err),
	)
	return placeholder, nil
}

func placeholderOrderID() string {
	return "local_" + uuid.NewString()
}

func (s *matchService) CheckIn(ctx context.Context, matchID, userID uuid.UUID, lat, lon float64) (*CheckinResult, error) {
	result, err := s.Verifier.AttemptCheckin(ctx, matchID, userID, lat, lon)
	if err != nil {
		return nil, err
	}

	if result.GroundSecured {
		events.Emit(ctx, s.Publisher, s.Log, events.Event{
			Type: events.EventGroundSecured,
			Payload: map[string]any{
				"match_id": matchID.String(),
				"user_id":  userID.String(),
			},
		})
	}
	return result, nil
}

// Cancel flips the match to CANCELLED, refunds every HELD escrow and expires the
// vacancies, all or nothing.
func (s *matchService) Cancel(ctx context.Context, matchID, actorID uuid.UUID) (*CancelResult, error) {
	result := &CancelResult{}

	err := s.MatchRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := s.MatchRepo.FindByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return notFound(err, ErrMatchNotFound)
		}
		if match.CaptainID != actorID {
			return ErrNotCaptain
		}
		if match.IsCancelled || match.Status == models.MatchStatusCancelled {
			return ErrMatchAlreadyCancelled
		}
		if !s.now().Before(match.StartTime) {
			return ErrMatchAlreadyStarted
		}
		if !models.IsValidMatchTransition(match.Status, models.MatchStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidMatchTransition, match.Status, models.MatchStatusCancelled)
		}

		if err := s.MatchRepo.Update(ctx, tx, matchID, map[string]any{
			"is_cancelled": true,
			"status":       models.MatchStatusCancelled,
		}); err != nil {
			return err
		}

		refunded, err := s.Escrow.BulkRefundForMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}

		expired, err := s.Ledger.ExpireAllForMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}

		match.IsCancelled = true
		match.Status = models.MatchStatusCancelled
		result.Match = match
		result.RefundsProcessed = refunded
		result.VacanciesExpired = expired
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("match cancelled",
		zap.String("match_id", matchID.String()),
		zap.Int64("refunds_processed", result.RefundsProcessed),
		zap.Int64("vacancies_expired", result.VacanciesExpired),
	)
	events.Emit(ctx, s.Publisher, s.Log, events.Event{
		Type: events.EventMatchCancelled,
		Payload: map[string]any{
			"match_id":          matchID.String(),
			"refunds_processed": result.RefundsProcessed,
		},
	})
	return result, nil
}

// SubmitScorecard records stats, completes the match and releases escrows.
func (s *matchService) SubmitScorecard(ctx context.Context, matchID, actorID uuid.UUID, in ScorecardInput) (*ScorecardResult, error) {
	seen := make(map[uuid.UUID]bool, len(in.PlayerStats))
	for _, ps := range in.PlayerStats {
		if ps.UserID == uuid.Nil {
			return nil, invalidArgument("player stat without user_id")
		}
		if seen[ps.UserID] {
			return nil, invalidArgument("duplicate stats for user %s", ps.UserID)
		}
		if ps.Runs < 0 || ps.Wickets < 0 || ps.Catches < 0 {
			return nil, invalidArgument("stats must not be negative")
		}
		seen[ps.UserID] = true
	}

	result := &ScorecardResult{}

	err := s.MatchRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := s.MatchRepo.FindByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return notFound(err, ErrMatchNotFound)
		}
		if match.CaptainID != actorID {
			return ErrNotCaptain
		}

		exists, err := s.ScorecardRepo.ExistsForMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if exists {
			return ErrScorecardExists
		}
		if !models.IsValidMatchTransition(match.Status, models.MatchStatusCompleted) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidMatchTransition, match.Status, models.MatchStatusCompleted)
		}

		scorecard := &models.MatchScorecard{
			MatchID:         matchID,
			WinningTeamName: in.WinningTeamName,
			SummaryText:     in.SummaryText,
		}
		stats := make([]models.PlayerMatchStat, 0, len(in.PlayerStats))
		for _, ps := range in.PlayerStats {
			stats = append(stats, models.PlayerMatchStat{
				MatchID: matchID,
				UserID:  ps.UserID,
				Runs:    ps.Runs,
				Wickets: ps.Wickets,
				Catches: ps.Catches,
			})
		}
		if err := s.ScorecardRepo.Create(ctx, tx, scorecard, stats); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrScorecardExists
			}
			return err
		}

		for _, ps := range in.PlayerStats {
			if err := s.StatsRepo.Increment(ctx, tx, ps.UserID, ps.Runs, ps.Wickets); err != nil {
				return err
			}
		}

		if err := s.MatchRepo.Update(ctx, tx, matchID, map[string]any{
			"status": models.MatchStatusCompleted,
		}); err != nil {
			return err
		}

		released, err := s.Escrow.BulkReleaseForMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}

		result.Scorecard = scorecard
		result.Released = released
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("scorecard submitted",
		zap.String("match_id", matchID.String()),
		zap.Int("players", len(in.PlayerStats)),
		zap.Int64("released", result.Released),
	)
	events.Emit(ctx, s.Publisher, s.Log, events.Event{
		Type: events.EventMatchCompleted,
		Payload: map[string]any{
			"match_id":          matchID.String(),
			"winning_team_name": in.WinningTeamName,
			"released":          result.Released,
		},
	})
	return result, nil
}

func (s *matchService) Participation(ctx context.Context, matchID, userID uuid.UUID) (*Participation, error) {
	if _, err := s.MatchRepo.FindByID(ctx, matchID); err != nil {
		return nil, notFound(err, ErrMatchNotFound)
	}

	p := &Participation{AmountHeld: decimal.Zero}

	player, err := s.MatchRepo.FindPlayer(ctx, s.MatchRepo.GetDB(), matchID, userID)
	switch {
	case err == nil:
		p.IsParticipant = true
		p.HasCheckedIn = player.HasCheckedIn
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if !p.HasCheckedIn {
		checkedIn, err := s.CheckinRepo.HasSuccessful(ctx, matchID, userID)
		if err != nil {
			return nil, err
		}
		p.HasCheckedIn = checkedIn
	}

	escrow, err := s.EscrowRepo.FindLatest(ctx, matchID, userID)
	switch {
	case err == nil:
		status := escrow.Status
		p.EscrowStatus = &status
		if status == models.EscrowStatusHeld {
			p.AmountHeld = escrow.Amount
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return p, nil
}
