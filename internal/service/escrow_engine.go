package service

import (
	"context"
	"errors"
	"time"

	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HoldInput struct {
	MatchID        uuid.UUID
	PayerID        uuid.UUID
	VacancyID      *uuid.UUID
	Amount         decimal.Decimal
	GatewayOrderID string
}

// EscrowEngine moves payments HELD -> RELEASED | REFUNDED. Terminal states are final.
type EscrowEngine interface {
	Hold(ctx context.Context, tx *gorm.DB, in HoldInput) (*models.EscrowTransaction, error)
	Release(ctx context.Context, escrowID uuid.UUID) (*models.EscrowTransaction, error)
	Refund(ctx context.Context, escrowID uuid.UUID) (*models.EscrowTransaction, error)
	BulkRefundForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error)
	BulkReleaseForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error)
	ListByPayer(ctx context.Context, payerID uuid.UUID, status *models.EscrowStatus) ([]models.EscrowTransaction, error)
}

type escrowEngine struct {
	repo repository.EscrowRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewEscrowEngine(repo repository.EscrowRepository, log *zap.Logger) EscrowEngine {
	return &escrowEngine{repo: repo, log: log, now: time.Now}
}

func (e *escrowEngine) Hold(ctx context.Context, tx *gorm.DB, in HoldInput) (*models.EscrowTransaction, error) {
	if in.Amount.IsNegative() {
		return nil, invalidArgument("escrow amount must not be negative")
	}

	var result *models.EscrowTransaction

	err := withTx(ctx, e.repo.GetDB(), tx, func(tx *gorm.DB) error {
		_, err := e.repo.FindHeld(ctx, tx, in.MatchID, in.PayerID)
		if err == nil {
			return ErrAlreadyJoined
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		escrow := &models.EscrowTransaction{
			MatchID:        in.MatchID,
			PayerID:        in.PayerID,
			VacancyID:      in.VacancyID,
			Amount:         in.Amount,
			Status:         models.EscrowStatusHeld,
			GatewayOrderID: in.GatewayOrderID,
		}
		if err := e.repo.Create(ctx, tx, escrow); err != nil {
			// partial unique index on HELD rows
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return err
		}
		result = escrow
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Release is a no-op on an already released escrow.
func (e *escrowEngine) Release(ctx context.Context, escrowID uuid.UUID) (*models.EscrowTransaction, error) {
	return e.transition(ctx, escrowID, models.EscrowStatusReleased)
}

// Refund is a no-op on an already refunded escrow.
func (e *escrowEngine) Refund(ctx context.Context, escrowID uuid.UUID) (*models.EscrowTransaction, error) {
	return e.transition(ctx, escrowID, models.EscrowStatusRefunded)
}

func (e *escrowEngine) transition(ctx context.Context, escrowID uuid.UUID, to models.EscrowStatus) (*models.EscrowTransaction, error) {
	var result *models.EscrowTransaction

	err := e.repo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		escrow, err := e.repo.FindByIDForUpdate(ctx, tx, escrowID)
		if err != nil {
			return notFound(err, ErrEscrowNotFound)
		}

		switch escrow.Status {
		case to:
			result = escrow
			return nil
		case models.EscrowStatusHeld:
		default:
			return ErrInvalidTransition
		}

		now := e.now()
		ok, err := e.repo.Transition(ctx, tx, escrow.ID, to, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}

		escrow.Status = to
		if to == models.EscrowStatusReleased {
			escrow.ReleasedAt = &now
		} else {
			escrow.RefundedAt = &now
		}
		result = escrow
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("escrow transitioned",
		zap.String("escrow_id", escrowID.String()),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

// BulkRefundForMatch refunds every HELD escrow of the match and returns how many.
func (e *escrowEngine) BulkRefundForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error) {
	return e.bulk(ctx, tx, matchID, models.EscrowStatusRefunded)
}

func (e *escrowEngine) BulkReleaseForMatch(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (int64, error) {
	return e.bulk(ctx, tx, matchID, models.EscrowStatusReleased)
}

func (e *escrowEngine) bulk(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, to models.EscrowStatus) (int64, error) {
	var count int64
	err := withTx(ctx, e.repo.GetDB(), tx, func(tx *gorm.DB) error {
		n, err := e.repo.TransitionAllHeld(ctx, tx, matchID, to, e.now())
		count = n
		return err
	})
	return count, err
}

func (e *escrowEngine) ListByPayer(ctx context.Context, payerID uuid.UUID, status *models.EscrowStatus) ([]models.EscrowTransaction, error) {
	return e.repo.FindByPayerID(ctx, payerID, status)
}
