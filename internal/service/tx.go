package service

import (
	"context"

	"gorm.io/gorm"
)

// withTx runs fn inside tx when the caller already opened one, otherwise in a
// new transaction on db.
func withTx(ctx context.Context, db, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}
