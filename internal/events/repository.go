package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*TicketedEvent, error)

	// ApplySale adds count tickets and amount revenue, only while ticketing is
	// active and the total stays within capacity.
	ApplySale(ctx context.Context, id uuid.UUID, count int, amount decimal.Decimal) error
	// ApplyCancellation removes count tickets and amount revenue.
	ApplyCancellation(ctx context.Context, id uuid.UUID, count int, amount decimal.Decimal) error

	UpdateStatus(ctx context.Context, id uuid.UUID, from, to TicketingStatus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*TicketedEvent, error) {
	var event TicketedEvent
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("ticketed event %s not found", id)
		}
		return nil, fmt.Errorf("failed to get ticketed event: %w", err)
	}
	return &event, nil
}

func (r *repository) ApplySale(ctx context.Context, id uuid.UUID, count int, amount decimal.Decimal) error {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE ticketed_events
		SET tickets_sold = tickets_sold + ?, revenue = revenue + ?, updated_at = NOW()
		WHERE id = ? AND ticketing_status = ? AND tickets_sold + ? <= total_capacity`,
		count, amount, id, TicketingStatusActive, count)
	if result.Error != nil {
		return fmt.Errorf("failed to update event counters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.InventoryExhausted("event %s has no remaining capacity or is not on sale", id)
	}
	return nil
}

func (r *repository) ApplyCancellation(ctx context.Context, id uuid.UUID, count int, amount decimal.Decimal) error {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE ticketed_events
		SET tickets_sold = tickets_sold - ?, revenue = revenue - ?, updated_at = NOW()
		WHERE id = ? AND tickets_sold >= ?`,
		count, amount, id, count)
	if result.Error != nil {
		return fmt.Errorf("failed to update event counters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event %s counters would go negative", id)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to TicketingStatus) error {
	result := database.Conn(ctx, r.db).
		Model(&TicketedEvent{}).
		Where("id = ? AND ticketing_status = ?", id, from).
		Update("ticketing_status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticketing status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Conflict("ticketing status changed concurrently")
	}
	return nil
}
