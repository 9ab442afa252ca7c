package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-users-orders/internal/shared/references"
)

type txKey struct{}

// WithTx returns a context whose repository calls run inside tx.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Conn returns the transaction carried by ctx, or db bound to ctx when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

var _ references.Guard = (*ReferenceGuard)(nil)

// ReferenceGuard runs each section in one transaction that locks the users row:
// FOR SHARE while an order is attached, FOR UPDATE while the user is deleted.
type ReferenceGuard struct {
	db *gorm.DB
}

func NewReferenceGuard(db *gorm.DB) *ReferenceGuard {
	return &ReferenceGuard{db: db}
}

func (g *ReferenceGuard) Shared(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	return g.run(ctx, userID, clause.LockingStrengthShare, fn)
}

func (g *ReferenceGuard) Exclusive(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	return g.run(ctx, userID, clause.LockingStrengthUpdate, fn)
}

func (g *ReferenceGuard) run(ctx context.Context, userID int64, strength string, fn func(ctx context.Context) error) error {
	return Conn(ctx, g.db).Transaction(func(tx *gorm.DB) error {
		query := tx.Table("users").Where("id = ?", userID)
		// SQLite has no row locks; its single writer already serialises the transaction.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: strength})
		}
		var ids []int64
		if err := query.Pluck("id", &ids).Error; err != nil {
			return err
		}
		return fn(WithTx(ctx, tx))
	})
}
