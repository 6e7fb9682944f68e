package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor runs fn inside a single database transaction. Repositories
// called with the ctx handed to fn join that transaction via Conn.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

type TxOption func(*gormTransactor)

// WithLockTimeout makes each transaction give up on a row lock after d
// instead of queueing behind another sale. Zero keeps the server default.
func WithLockTimeout(d time.Duration) TxOption {
	return func(t *gormTransactor) {
		t.lockTimeout = d
	}
}

func NewTransactor(db *gorm.DB, opts ...TxOption) Transactor {
	t := &gormTransactor{db: db}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithTx commits when fn returns nil and rolls back otherwise. Nested calls
// reuse the outer transaction. PostgreSQL failures leave as apperror kinds.
func (t *gormTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if stmt := lockTimeoutStatement(t.lockTimeout); stmt != "" {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return Classify(err)
}

// SET does not take bind parameters; the value is an integer we format.
func lockTimeoutStatement(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds())
}

func TxFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// Conn returns the transaction bound to ctx, or db scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
