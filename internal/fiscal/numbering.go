package fiscal

import (
	"context"
	"errors"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Numberer hands out progressive numbers. Callers must hold a transaction in
// ctx: the counter row stays locked until commit and a rollback gives the
// number back.
type Numberer interface {
	NextProgressiveNumber(ctx context.Context, ticketedEventID uuid.UUID) (int64, error)
	LastProgressiveNumber(ctx context.Context, ticketedEventID uuid.UUID) (int64, error)
}

type numberer struct {
	db *gorm.DB
}

func NewNumberer(db *gorm.DB) Numberer {
	return &numberer{db: db}
}

func (n *numberer) NextProgressiveNumber(ctx context.Context, ticketedEventID uuid.UUID) (int64, error) {
	if database.TxFromContext(ctx) == nil {
		return 0, apperror.NumberingFailure("progressive number requested outside a transaction", nil)
	}

	var next int64
	err := database.Conn(ctx, n.db).Raw(`
		INSERT INTO fiscal_counters (ticketed_event_id, last_number, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (ticketed_event_id)
		DO UPDATE SET last_number = fiscal_counters.last_number + 1, updated_at = NOW()
		RETURNING last_number`,
		ticketedEventID).Scan(&next).Error
	if err != nil {
		return 0, apperror.NumberingFailure("failed to allocate progressive number", err)
	}
	if next < 1 {
		return 0, apperror.NumberingFailure("counter returned no number", nil)
	}
	return next, nil
}

func (n *numberer) LastProgressiveNumber(ctx context.Context, ticketedEventID uuid.UUID) (int64, error) {
	var counter Counter
	err := database.Conn(ctx, n.db).First(&counter, "ticketed_event_id = ?", ticketedEventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.NumberingFailure("failed to read progressive counter", err)
	}
	return counter.LastNumber, nil
}
