package cancellation

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/notifications"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/payments"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/clock"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/cache"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service interface defines the causale vocabulary and the refund step of a
// cancellation.
type Service interface {
	ListReasons(ctx context.Context) ([]Reason, error)
	IsActiveReason(ctx context.Context, code string) (bool, error)

	// RequestRefund refunds a cancelled ticket. A failure leaves the ticket
	// cancelled and records the attempt for a later retry.
	RequestRefund(ctx context.Context, ticketID uuid.UUID) (*tickets.Ticket, error)
	RetryPendingRefunds(ctx context.Context, maxAttempts, batchSize int) (int, error)

	SetCacheService(cacheService cache.Service)
}

// cashReference marks refunds settled at the box office without a gateway
const cashReference = "CASH"

type service struct {
	repo         Repository
	tickets      tickets.Repository
	tx           database.Transactor
	gateway      payments.Gateway
	locker       RefundLocker
	publisher    notifications.Publisher
	clock        clock.Clock
	cacheService cache.Service
}

// NewService creates a new cancellation service
func NewService(repo Repository, ticketRepo tickets.Repository, tx database.Transactor,
	gateway payments.Gateway, locker RefundLocker, publisher notifications.Publisher, clk clock.Clock) Service {
	if locker == nil {
		locker = NewLocalRefundLocker()
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &service{
		repo:         repo,
		tickets:      ticketRepo,
		tx:           tx,
		gateway:      gateway,
		locker:       locker,
		publisher:    publisher,
		clock:        clk,
		cacheService: cache.NewService(nil),
	}
}

// SetCacheService sets the cache service (for dependency injection)
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// CAUSALI

func (s *service) ListReasons(ctx context.Context) ([]Reason, error) {
	var reasons []Reason
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_CANCELLATION_REASONS, constants.TTL_CANCELLATION_REASONS,
		func() (interface{}, error) {
			return s.repo.ListActive(ctx)
		}, &reasons)
	if err != nil {
		return nil, err
	}
	return reasons, nil
}

func (s *service) IsActiveReason(ctx context.Context, code string) (bool, error) {
	reason, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	return reason != nil && reason.Active, nil
}

// REFUNDS

func (s *service) RequestRefund(ctx context.Context, ticketID uuid.UUID) (*tickets.Ticket, error) {
	release, ok, err := s.locker.Acquire(ctx, ticketID)
	if err != nil {
		return nil, s.lockUnavailable(ctx, ticketID, err)
	}
	if !ok {
		return nil, apperror.Conflict("a refund for ticket %s is already in progress", ticketID)
	}
	defer release()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != tickets.StatusCancelled {
		return nil, apperror.Conflict("ticket is %s; only cancelled tickets can be refunded", ticket.Status)
	}
	if ticket.RefundedAt != nil {
		return nil, apperror.Conflict("ticket was already refunded")
	}
	if ticket.TransactionID == nil {
		return nil, apperror.Validation("ticket has no transaction to refund")
	}

	txn, err := s.tickets.GetTransaction(ctx, *ticket.TransactionID)
	if err != nil {
		return nil, err
	}

	amount := ticket.GrossAmount
	reference, err := s.settle(ctx, ticket, txn, amount)
	if err != nil {
		return nil, s.recordFailure(ctx, ticket, err)
	}

	now := s.clock.Now()
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		marked, err := s.tickets.MarkRefunded(ctx, ticket.ID, reference, amount, now)
		if err != nil {
			return err
		}
		if !marked {
			return apperror.Conflict("ticket was refunded concurrently")
		}
		return s.tickets.AddTransactionRefund(ctx, txn.ID, amount)
	})
	if err != nil {
		// money has moved; keep the reference for reconciliation
		logger.GetDefault().ErrorWithContext(ctx, "🚨 Refund settled but not recorded", err, map[string]interface{}{
			"ticket_id":        ticket.ID.String(),
			"refund_reference": reference,
			"amount":           amount.StringFixed(2),
		})
		return nil, err
	}

	metrics.TrackRefund("succeeded")
	logger.GetDefault().LogRefundCompleted(ctx, ticket.ID.String(), reference, amount.StringFixed(2))
	notifications.PublishAsync(ctx, s.publisher,
		notifications.NewLifecycleEvent(notifications.EventTicketRefunded, ticket.TicketedEventID).
			WithTickets(ticket.ID).
			WithTransaction(ticket.TransactionID).
			WithAmount(amount).
			At(now).
			Build())

	return s.tickets.GetByID(ctx, ticket.ID)
}

// lockUnavailable counts a refund that could not start because the lock
// store failed. Only a ticket still awaiting its refund is charged an attempt.
func (s *service) lockUnavailable(ctx context.Context, ticketID uuid.UUID, lockErr error) error {
	cause := fmt.Errorf("refund lock unavailable: %w", lockErr)
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil || ticket.Status != tickets.StatusCancelled || ticket.RefundedAt != nil {
		return apperror.ExternalRefundFailure("refund could not be started; retry later", cause)
	}
	return s.recordFailure(ctx, ticket, cause)
}

// settle moves the money. Cash sales and zero-amount tickets are settled
// without the gateway.
func (s *service) settle(ctx context.Context, ticket *tickets.Ticket, txn *tickets.Transaction, amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return cashReference, nil
	}
	if txn.PaymentMethod == tickets.PaymentCash && txn.PaymentReference == nil {
		return cashReference, nil
	}
	if txn.PaymentReference == nil {
		return "", errors.New("transaction has no payment reference")
	}
	if s.gateway == nil {
		return "", errors.New("payment gateway is not configured")
	}
	return s.gateway.Refund(ctx, *txn.PaymentReference, amount, "refund-"+ticket.ID.String())
}

func (s *service) recordFailure(ctx context.Context, ticket *tickets.Ticket, cause error) error {
	if err := s.tickets.RecordRefundFailure(context.WithoutCancel(ctx), ticket.ID, cause.Error()); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to record refund failure", err, map[string]interface{}{
			"ticket_id": ticket.ID.String(),
		})
	}

	metrics.TrackRefund("failed")
	logger.GetDefault().LogRefundFailed(ctx, ticket.ID.String(), ticket.RefundAttempts+1, cause)
	notifications.PublishAsync(ctx, s.publisher,
		notifications.NewLifecycleEvent(notifications.EventTicketRefundFailed, ticket.TicketedEventID).
			WithTickets(ticket.ID).
			WithTransaction(ticket.TransactionID).
			WithError(cause).
			At(s.clock.Now()).
			Build())

	return apperror.ExternalRefundFailure("refund failed; the ticket stays cancelled and can be retried", cause)
}

// RetryPendingRefunds walks cancelled tickets whose refund has not gone
// through yet. It returns how many were refunded.
func (s *service) RetryPendingRefunds(ctx context.Context, maxAttempts, batchSize int) (int, error) {
	pending, err := s.tickets.ListPendingRefunds(ctx, maxAttempts, batchSize)
	if err != nil {
		return 0, err
	}

	refunded := 0
	var lastErr error
	for i := range pending {
		if ctx.Err() != nil {
			return refunded, ctx.Err()
		}
		if _, err := s.RequestRefund(ctx, pending[i].ID); err != nil {
			if apperror.KindOf(err) != apperror.KindConflict {
				lastErr = err
			}
			continue
		}
		refunded++
	}
	if lastErr != nil && refunded == 0 && len(pending) > 0 {
		return 0, fmt.Errorf("no pending refund succeeded: %w", lastErr)
	}
	return refunded, nil
}
