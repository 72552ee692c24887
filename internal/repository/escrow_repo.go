package repository

import (
	"context"
	"time"

	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EscrowRepository interface {
	Create(ctx context.Context, tx *gorm.DB, escrow *models.EscrowTransaction) error
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.EscrowTransaction, error)
	FindHeld(ctx context.Context, tx *gorm.DB, matchID, payerID uuid.UUID) (*models.EscrowTransaction, error)
	FindLatest(ctx context.Context, matchID, payerID uuid.UUID) (*models.EscrowTransaction, error)
	FindByPayerID(ctx context.Context, payerID uuid.UUID, status *models.EscrowStatus) ([]models.EscrowTransaction, error)
	Transition(ctx context.Context, tx *gorm.DB, id uuid.UUID, to models.EscrowStatus, at time.Time) (bool, error)
	TransitionAllHeld(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, to models.EscrowStatus, at time.Time) (int64, error)
	GetDB() *gorm.DB
}

type escrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) EscrowRepository {
	return &escrowRepository{db: db}
}

func (r *escrowRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *escrowRepository) Create(ctx context.Context, tx *gorm.DB, escrow *models.EscrowTransaction) error {
	return tx.WithContext(ctx).Create(escrow).Error
}

// FindByIDForUpdate acquires a row-level lock on the escrow within the given transaction.
func (r *escrowRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.EscrowTransaction, error) {
	var escrow models.EscrowTransaction
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) FindHeld(ctx context.Context, tx *gorm.DB, matchID, payerID uuid.UUID) (*models.EscrowTransaction, error) {
	var escrow models.EscrowTransaction
	err := tx.WithContext(ctx).
		Where("match_id = ? AND payer_id = ? AND status = ?", matchID, payerID, models.EscrowStatusHeld).
		First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) FindLatest(ctx context.Context, matchID, payerID uuid.UUID) (*models.EscrowTransaction, error) {
	var escrow models.EscrowTransaction
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND payer_id = ?", matchID, payerID).
		Order("created_at DESC").
		First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (r *escrowRepository) FindByPayerID(ctx context.Context, payerID uuid.UUID, status *models.EscrowStatus) ([]models.EscrowTransaction, error) {
	var escrows []models.EscrowTransaction
	q := r.db.WithContext(ctx).Where("payer_id = ?", payerID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("created_at DESC").Find(&escrows).Error; err != nil {
		return nil, err
	}
	return escrows, nil
}

// Transition moves a single HELD escrow to a terminal status. It reports false
// when the row was no longer HELD.
func (r *escrowRepository) Transition(ctx context.Context, tx *gorm.DB, id uuid.UUID, to models.EscrowStatus, at time.Time) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.EscrowTransaction{}).
		Where("id = ? AND status = ?", id, models.EscrowStatusHeld).
		Updates(transitionFields(to, at))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *escrowRepository) TransitionAllHeld(ctx context.Context, tx *gorm.DB, matchID uuid.UUID, to models.EscrowStatus, at time.Time) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.EscrowTransaction{}).
		Where("match_id = ? AND status = ?", matchID, models.EscrowStatusHeld).
		Updates(transitionFields(to, at))
	return res.RowsAffected, res.Error
}

func transitionFields(to models.EscrowStatus, at time.Time) map[string]any {
	fields := map[string]any{"status": to}
	switch to {
	case models.EscrowStatusReleased:
		fields["released_at"] = at
	case models.EscrowStatusRefunded:
		fields["refunded_at"] = at
	}
	return fields
}
