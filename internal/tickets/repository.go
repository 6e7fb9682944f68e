package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	// Tickets
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Ticket, int64, error)
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]Ticket, error)

	// Transition moves a ticket from one status to another and applies
	// updates in the same statement. Returns false when the ticket was not in
	// from.
	Transition(ctx context.Context, id uuid.UUID, from, to Status, updates map[string]interface{}) (bool, error)
	UpdateParticipant(ctx context.Context, id uuid.UUID, firstName, lastName *string) (bool, error)

	// Refund bookkeeping
	MarkRefunded(ctx context.Context, id uuid.UUID, reference string, amount decimal.Decimal, at time.Time) (bool, error)
	RecordRefundFailure(ctx context.Context, id uuid.UUID, reason string) error
	ListPendingRefunds(ctx context.Context, maxAttempts, limit int) ([]Ticket, error)

	// Transactions
	CreateTransaction(ctx context.Context, txn *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	AddTransactionRefund(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticket *Ticket) error {
	if err := database.Conn(ctx, r.db).Create(ticket).Error; err != nil {
		if database.IsUniqueViolation(err) {
			switch database.ConstraintName(err) {
			case "idx_event_progressive":
				return apperror.NumberingFailure("progressive number already issued", err)
			case "idx_tickets_live_seat":
				return apperror.InventoryExhausted("seat already has a live ticket")
			}
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := database.Conn(ctx, r.db).First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("ticket %s not found", id)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Ticket, int64, error) {
	var (
		tickets []Ticket
		total   int64
	)
	query := database.Conn(ctx, r.db).Model(&Ticket{}).Where("ticketed_event_id = ?", eventID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	err := query.Order("progressive_number ASC").Limit(limit).Offset(offset).Find(&tickets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, total, nil
}

func (r *repository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := database.Conn(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		Order("progressive_number ASC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, from, to Status, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}
	result := database.Conn(ctx, r.db).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, fmt.Errorf("failed to move ticket to %s: %w", to, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) UpdateParticipant(ctx context.Context, id uuid.UUID, firstName, lastName *string) (bool, error) {
	result := database.Conn(ctx, r.db).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", id, StatusValid).
		Updates(map[string]interface{}{
			"participant_first_name": firstName,
			"participant_last_name":  lastName,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update participant: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkRefunded records a successful refund once; a second call is a no-op
// that returns false.
func (r *repository) MarkRefunded(ctx context.Context, id uuid.UUID, reference string, amount decimal.Decimal, at time.Time) (bool, error) {
	result := database.Conn(ctx, r.db).
		Model(&Ticket{}).
		Where("id = ? AND status = ? AND refunded_at IS NULL", id, StatusCancelled).
		Updates(map[string]interface{}{
			"refunded_at":       at,
			"refund_amount":     amount,
			"refund_reference":  reference,
			"last_refund_error": nil,
			"refund_attempts":   gorm.Expr("refund_attempts + 1"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to record refund: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RecordRefundFailure(ctx context.Context, id uuid.UUID, reason string) error {
	result := database.Conn(ctx, r.db).
		Model(&Ticket{}).
		Where("id = ? AND refunded_at IS NULL", id).
		Updates(map[string]interface{}{
			"refund_attempts":   gorm.Expr("refund_attempts + 1"),
			"last_refund_error": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record refund failure: %w", result.Error)
	}
	return nil
}

func (r *repository) ListPendingRefunds(ctx context.Context, maxAttempts, limit int) ([]Ticket, error) {
	var tickets []Ticket
	err := database.Conn(ctx, r.db).
		Where("status = ? AND refund_requested = ? AND refunded_at IS NULL AND refund_attempts < ?",
			StatusCancelled, true, maxAttempts).
		Order("cancelled_at ASC").
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending refunds: %w", err)
	}
	return tickets, nil
}

// TRANSACTIONS

func (r *repository) CreateTransaction(ctx context.Context, txn *Transaction) error {
	if err := database.Conn(ctx, r.db).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *repository) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var txn Transaction
	err := database.Conn(ctx, r.db).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("transaction %s not found", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *repository) AddTransactionRefund(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE transactions
		SET refunded_amount = refunded_amount + ?, status = ?, updated_at = NOW()
		WHERE id = ? AND refunded_amount + ? <= total_amount`,
		amount, TransactionRefunded, id, amount)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction refund: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Conflict("refund would exceed transaction %s total", id)
	}
	return nil
}
