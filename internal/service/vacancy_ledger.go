package service

import (
	"context"

	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AddVacancyInput struct {
	Role        models.PlayerRole
	CountNeeded int
	CostPerHead decimal.Decimal
}

// VacancyLedger owns slot accounting. Methods taking a tx join the caller's
// transaction; a nil tx runs them in their own.
type VacancyLedger interface {
	ClaimSlot(ctx context.Context, tx *gorm.DB, vacancyID, matchID uuid.UUID) (*models.Vacancy, int, error)
	AddVacancy(ctx context.Context, matchID, actorID uuid.UUID, in AddVacancyInput) (*models.Vacancy, error)
	ExpireAllForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error)
	ListVacancies(ctx context.Context, matchID uuid.UUID, filter repository.VacancyFilter) ([]models.Vacancy, error)
}

type vacancyLedger struct {
	vacancyRepo repository.VacancyRepository
	matchRepo   repository.MatchRepository
	log         *zap.Logger
}

func NewVacancyLedger(vacancyRepo repository.VacancyRepository, matchRepo repository.MatchRepository, log *zap.Logger) VacancyLedger {
	return &vacancyLedger{
		vacancyRepo: vacancyRepo,
		matchRepo:   matchRepo,
		log:         log,
	}
}

// ClaimSlot takes one slot and returns the updated vacancy with the slots left.
func (l *vacancyLedger) ClaimSlot(ctx context.Context, tx *gorm.DB, vacancyID, matchID uuid.UUID) (*models.Vacancy, int, error) {
	var (
		result    *models.Vacancy
		remaining int
	)

	err := withTx(ctx, l.vacancyRepo.GetDB(), tx, func(tx *gorm.DB) error {
		// 1. Lock the vacancy row
		vacancy, err := l.vacancyRepo.FindForUpdate(ctx, tx, vacancyID, matchID)
		if err != nil {
			return notFound(err, ErrVacancyNotFound)
		}

		// 2. Check status and capacity
		if vacancy.Status == models.VacancyStatusFilled || vacancy.FilledCount >= vacancy.CountNeeded {
			return ErrVacancyFilled
		}
		if vacancy.Status != models.VacancyStatusOpen {
			return ErrVacancyNotOpen
		}

		// 3. Conditional increment; losing the race here means someone took the last slot
		ok, err := l.vacancyRepo.IncrementFilled(ctx, tx, vacancy.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVacancyFilled
		}

		vacancy.FilledCount++
		if vacancy.FilledCount >= vacancy.CountNeeded {
			vacancy.Status = models.VacancyStatusFilled
		}
		result = vacancy
		remaining = vacancy.SlotsRemaining()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return result, remaining, nil
}

func (l *vacancyLedger) AddVacancy(ctx context.Context, matchID, actorID uuid.UUID, in AddVacancyInput) (*models.Vacancy, error) {
	if in.Role == "" {
		in.Role = models.RoleAny
	}
	if !in.Role.Valid() {
		return nil, invalidArgument("unknown role %q", in.Role)
	}
	if in.CountNeeded <= 0 {
		return nil, invalidArgument("count_needed must be positive")
	}
	if in.CostPerHead.IsNegative() {
		return nil, invalidArgument("cost_per_head must not be negative")
	}

	var result *models.Vacancy

	err := l.vacancyRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := l.matchRepo.FindByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return notFound(err, ErrMatchNotFound)
		}
		if match.CaptainID != actorID {
			return ErrNotCaptain
		}
		if !match.IsJoinable() {
			return ErrMatchNotJoinable
		}

		vacancy := &models.Vacancy{
			MatchID:     matchID,
			Role:        in.Role,
			CountNeeded: in.CountNeeded,
			CostPerHead: in.CostPerHead,
			Status:      models.VacancyStatusOpen,
		}
		if err := l.vacancyRepo.Create(ctx, tx, vacancy); err != nil {
			return err
		}
		result = vacancy
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("vacancy added",
		zap.String("match_id", matchID.String()),
		zap.String("vacancy_id", result.ID.String()),
		zap.String("role", string(result.Role)),
		zap.Int("count_needed", result.CountNeeded),
	)
	return result, nil
}

// ExpireAllForMatch moves every vacancy of the match to EXPIRED, FILLED ones
// included. Already expired rows are left alone.
func (l *vacancyLedger) ExpireAllForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error) {
	var expired int64
	err := withTx(ctx, l.vacancyRepo.GetDB(), tx, func(tx *gorm.DB) error {
		n, err := l.vacancyRepo.ExpireByMatchID(ctx, tx, matchID)
		expired = n
		return err
	})
	return expired, err
}

func (l *vacancyLedger) ListVacancies(ctx context.Context, matchID uuid.UUID, filter repository.VacancyFilter) ([]models.Vacancy, error) {
	if _, err := l.matchRepo.FindByID(ctx, matchID); err != nil {
		return nil, notFound(err, ErrMatchNotFound)
	}
	return l.vacancyRepo.FindByMatchID(ctx, matchID, filter)
}
