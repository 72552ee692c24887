package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "HELD"
	EscrowStatusReleased EscrowStatus = "RELEASED"
	EscrowStatusRefunded EscrowStatus = "REFUNDED"
)

// IsTerminal reports whether no further transition is possible.
func (s EscrowStatus) IsTerminal() bool {
	return s == EscrowStatusReleased || s == EscrowStatusRefunded
}

// EscrowTransaction is never deleted; released and refunded rows are the audit trail.
type EscrowTransaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MatchID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"match_id"`
	PayerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"payer_id"`
	VacancyID      *uuid.UUID      `gorm:"type:uuid" json:"vacancy_id,omitempty"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status         EscrowStatus    `gorm:"type:varchar(20);not null;default:'HELD';index" json:"status"`
	GatewayOrderID string          `gorm:"size:255" json:"gateway_order_id,omitempty"`
	ReleasedAt     *time.Time      `json:"released_at,omitempty"`
	RefundedAt     *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (e *EscrowTransaction) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
