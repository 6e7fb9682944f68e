package tickets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/fiscal"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/notifications"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/payments"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/clock"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/metrics"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
	MarkUsed(ctx context.Context, ticketID uuid.UUID) (*Ticket, error)
	// Cancel commits the cancellation before any refund is attempted. On a
	// refund failure it returns the cancelled ticket together with the error.
	Cancel(ctx context.Context, req CancelRequest) (*Ticket, error)
	ChangeParticipant(ctx context.Context, ticketID uuid.UUID, firstName, lastName string) (*Ticket, error)

	GetTicket(ctx context.Context, ticketID uuid.UUID) (*Ticket, error)
	ListEventTickets(ctx context.Context, eventID uuid.UUID, page, limit int) ([]Ticket, int64, error)
	ListTransactionTickets(ctx context.Context, transactionID uuid.UUID) ([]Ticket, error)
	VerifySeal(ctx context.Context, ticketID uuid.UUID) (*SealVerification, error)
}

// Refunder runs the refund step of a cancellation
type Refunder interface {
	RequestRefund(ctx context.Context, ticketID uuid.UUID) (*Ticket, error)
}

// ReasonCatalog answers whether a causale code may be used for cancellation
type ReasonCatalog interface {
	IsActiveReason(ctx context.Context, code string) (bool, error)
}

// Dependencies groups the collaborators of the ticket service
type Dependencies struct {
	Repo      Repository
	Events    events.Repository
	Registry  seats.Service
	Numberer  fiscal.Numberer
	Sealer    *fiscal.Sealer
	Device    fiscal.DeviceMonitor
	Location  *time.Location
	Tx        database.Transactor
	Gateway   payments.Gateway
	Publisher notifications.Publisher
	Clock     clock.Clock
}

type service struct {
	Dependencies
	refunder Refunder
	reasons  ReasonCatalog
}

func NewService(deps Dependencies) Service {
	if deps.Clock == nil {
		deps.Clock = clock.NewSystem()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Publisher == nil {
		deps.Publisher = notifications.NoopPublisher{}
	}
	if deps.Device == nil {
		deps.Device = fiscal.StaticDeviceMonitor(true)
	}
	return &service{Dependencies: deps}
}

// SetRefunder wires the refund coordinator after construction; it depends on
// this package's repository.
func SetRefunder(s Service, refunder Refunder, reasons ReasonCatalog) {
	if svc, ok := s.(*service); ok {
		svc.refunder = refunder
		svc.reasons = reasons
	}
}

// ISSUANCE

func (s *service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	start := time.Now()
	result, err := s.issue(ctx, req)
	metrics.TrackIssuanceDuration(time.Since(start))
	if err != nil {
		metrics.TrackIssuanceFailure(string(apperror.KindOf(err)))
		logger.GetDefault().LogIssuanceRejected(ctx, req.TicketedEventID.String(), req.SectorID.String(),
			string(apperror.KindOf(err)), err)
		return nil, err
	}
	return result, nil
}

func (s *service) issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := validateIssueRequest(&req); err != nil {
		return nil, err
	}
	if err := s.Device.EnsureReady(ctx); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	event, err := s.Events.GetByID(ctx, req.TicketedEventID)
	if err != nil {
		return nil, err
	}
	if err := event.CheckOnSale(now); err != nil {
		return nil, err
	}
	if event.MaxTicketsPerUser > 0 && req.Quantity > event.MaxTicketsPerUser {
		return nil, apperror.Validation("at most %d tickets per request", event.MaxTicketsPerUser)
	}
	if event.RequiresNominative && (req.ParticipantFirstName == "" || req.ParticipantLastName == "") {
		return nil, apperror.Validation("participant first and last name are required for this event")
	}

	sector, err := s.Registry.GetSector(ctx, req.SectorID)
	if err != nil {
		return nil, err
	}
	if sector.TicketedEventID != event.ID {
		return nil, apperror.Validation("sector %s does not belong to this event", sector.SectorCode)
	}
	if !sector.IsNumbered && len(req.SeatIDs) > 0 {
		return nil, apperror.Validation("sector %s is not numbered; seats cannot be chosen", sector.SectorCode)
	}
	price, err := seats.PriceFor(sector, req.TicketType)
	if err != nil {
		return nil, err
	}
	gross := price.Gross()
	total := gross.Mul(decimal.NewFromInt(int64(req.Quantity)))

	paymentRef, charged, err := s.charge(ctx, req, total)
	if err != nil {
		return nil, err
	}

	result := &IssueResult{}
	err = s.Tx.WithTx(ctx, func(ctx context.Context) error {
		var transactionID *uuid.UUID
		if req.PaymentMethod != "" {
			txn := &Transaction{
				ID:               uuid.New(),
				TicketedEventID:  event.ID,
				TransactionCode:  newTransactionCode(),
				TicketsCount:     req.Quantity,
				TotalAmount:      total,
				RefundedAmount:   decimal.Zero,
				PaymentMethod:    req.PaymentMethod,
				PaymentReference: optionalString(paymentRef),
				CustomerEmail:    optionalString(req.CustomerEmail),
				Status:           TransactionCompleted,
			}
			if err := s.Repo.CreateTransaction(ctx, txn); err != nil {
				return err
			}
			transactionID = &txn.ID
			result.Transaction = txn
		}

		dateStr, timeStr := fiscal.EmissionStamp(now, s.Location)
		for i := 0; i < req.Quantity; i++ {
			var seatID *uuid.UUID
			if len(req.SeatIDs) > 0 {
				seatID = &req.SeatIDs[i]
			}
			reservation, err := s.Registry.Reserve(ctx, sector.ID, seatID)
			if err != nil {
				return err
			}

			number, err := s.Numberer.NextProgressiveNumber(ctx, event.ID)
			if err != nil {
				return err
			}

			seal := s.Sealer.ComputeSeal(fiscal.SealInput{
				SectorCode:        reservation.SectorCode,
				TicketTypeCode:    req.TicketType.String(),
				ProgressiveNumber: number,
				EmissionDate:      dateStr,
				EmissionTime:      timeStr,
				GrossAmount:       gross,
			})
			if seal == "" {
				return apperror.NumberingFailure("empty fiscal seal", nil)
			}

			ticket := Ticket{
				ID:                   uuid.New(),
				TicketedEventID:      event.ID,
				SectorID:             sector.ID,
				SeatID:               reservation.SeatID,
				SectorCode:           reservation.SectorCode,
				TicketTypeCode:       req.TicketType,
				ProgressiveNumber:    number,
				EmissionDateStr:      dateStr,
				EmissionTimeStr:      timeStr,
				FiscalSealCode:       seal,
				GrossAmount:          gross,
				Prevendita:           price.Prevendita,
				ParticipantFirstName: optionalString(req.ParticipantFirstName),
				ParticipantLastName:  optionalString(req.ParticipantLastName),
				Status:               StatusValid,
				TransactionID:        transactionID,
				IssuedBy:             optionalString(req.ActorID),
			}
			if reservation.SeatID != nil {
				ticket.SeatRow = optionalString(reservation.Row)
				ticket.SeatNumber = optionalString(reservation.SeatNumber)
			}
			if err := s.Repo.Create(ctx, &ticket); err != nil {
				return err
			}
			result.Tickets = append(result.Tickets, ticket)
		}

		return s.Events.ApplySale(ctx, event.ID, req.Quantity, total)
	})
	if err != nil {
		if charged {
			s.compensateCharge(ctx, paymentRef, total, err)
		}
		return nil, err
	}

	first, last := result.Tickets[0].ProgressiveNumber, result.Tickets[len(result.Tickets)-1].ProgressiveNumber
	logger.GetDefault().LogTicketsIssued(ctx, event.ID.String(), sector.ID.String(), len(result.Tickets), first, last)
	metrics.TrackTicketsIssued(req.TicketType.String(), len(result.Tickets))

	s.Registry.AvailabilityChanged(ctx, sector.ID)

	ids := make([]uuid.UUID, len(result.Tickets))
	for i := range result.Tickets {
		ids[i] = result.Tickets[i].ID
	}
	builder := notifications.NewLifecycleEvent(notifications.EventTicketsIssued, event.ID).
		WithTickets(ids...).
		WithSectors(sector.ID).
		WithAmount(total).
		WithActor(req.ActorID).
		At(now)
	if result.Transaction != nil {
		builder.WithTransaction(&result.Transaction.ID)
	}
	notifications.PublishAsync(ctx, s.Publisher, builder.Build())

	return result, nil
}

func validateIssueRequest(req *IssueRequest) error {
	req.ParticipantFirstName = strings.TrimSpace(req.ParticipantFirstName)
	req.ParticipantLastName = strings.TrimSpace(req.ParticipantLastName)

	if req.Quantity < 1 {
		return apperror.Validation("quantity must be at least 1")
	}
	if !req.TicketType.IsValid() {
		return apperror.Validation("unknown ticket type %q", req.TicketType)
	}
	if len(req.SeatIDs) > 0 {
		if len(req.SeatIDs) != req.Quantity {
			return apperror.Validation("%d seats given for %d tickets", len(req.SeatIDs), req.Quantity)
		}
		seen := make(map[uuid.UUID]struct{}, len(req.SeatIDs))
		for _, id := range req.SeatIDs {
			if _, dup := seen[id]; dup {
				return apperror.Validation("seat %s requested twice", id)
			}
			seen[id] = struct{}{}
		}
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.IsValid() {
		return apperror.Validation("unknown payment method %q", req.PaymentMethod)
	}
	return nil
}

// charge takes card payments that arrive without a gateway reference. It runs
// before the issuance transaction so no row lock is held during the call.
func (s *service) charge(ctx context.Context, req IssueRequest, total decimal.Decimal) (string, bool, error) {
	if req.PaymentMethod != PaymentCard || req.PaymentReference != "" || !total.IsPositive() {
		return req.PaymentReference, false, nil
	}
	if s.Gateway == nil {
		return "", false, apperror.PaymentFailure("card payments are not configured", nil)
	}
	if req.PaymentToken == "" {
		return "", false, apperror.Validation("payment_token is required for card payments without a payment_reference")
	}

	ref, err := s.Gateway.Charge(ctx, total, req.PaymentToken, "charge-"+uuid.NewString())
	if err != nil {
		return "", false, apperror.PaymentFailure("card charge failed", err)
	}
	return ref, true, nil
}

func (s *service) compensateCharge(ctx context.Context, paymentRef string, total decimal.Decimal, cause error) {
	refundRef, err := s.Gateway.Refund(context.WithoutCancel(ctx), paymentRef, total, "void-"+paymentRef)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "🚨 Failed to void charge after issuance failure", err, map[string]interface{}{
			"payment_reference": paymentRef,
			"amount":            total.StringFixed(2),
			"issuance_error":    cause.Error(),
		})
		return
	}
	logger.GetDefault().InfoWithContext(ctx, "Charge voided after issuance failure", map[string]interface{}{
		"payment_reference": paymentRef,
		"refund_reference":  refundRef,
	})
}

func newTransactionCode() string {
	id := uuid.New()
	return base58.Encode(id[:])
}

// CHECK-IN

func (s *service) MarkUsed(ctx context.Context, ticketID uuid.UUID) (*Ticket, error) {
	now := s.Clock.Now()
	ok, err := s.Repo.Transition(ctx, ticketID, StatusValid, StatusUsed, map[string]interface{}{"used_at": now})
	if err != nil {
		return nil, err
	}

	ticket, err := s.Repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict("ticket is %s and cannot be used", ticket.Status)
	}

	logger.GetDefault().LogTicketUsed(ctx, ticketID.String())
	metrics.TrackTransition(StatusUsed.String())
	notifications.PublishAsync(ctx, s.Publisher,
		notifications.NewLifecycleEvent(notifications.EventTicketUsed, ticket.TicketedEventID).
			WithTickets(ticket.ID).
			At(now).
			Build())

	return ticket, nil
}

// CANCELLATION

func (s *service) Cancel(ctx context.Context, req CancelRequest) (*Ticket, error) {
	req.ReasonCode = strings.TrimSpace(req.ReasonCode)
	if req.ReasonCode == "" {
		return nil, apperror.Validation("reason_code is required")
	}
	if s.reasons == nil {
		return nil, errors.New("cancellation reason catalog is not configured")
	}
	active, err := s.reasons.IsActiveReason(ctx, req.ReasonCode)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperror.Validation("unknown cancellation reason %q", req.ReasonCode)
	}

	now := s.Clock.Now()
	var ticket *Ticket
	err = s.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if ticket, err = s.Repo.GetByID(ctx, req.TicketID); err != nil {
			return err
		}
		if !ticket.Status.CanTransitionTo(StatusCancelled) {
			return apperror.Conflict("ticket is %s and cannot be cancelled", ticket.Status)
		}
		if req.Refund && ticket.TransactionID == nil {
			return apperror.Validation("ticket has no transaction to refund")
		}

		ok, err := s.Repo.Transition(ctx, ticket.ID, StatusValid, StatusCancelled, map[string]interface{}{
			"cancelled_at":     now,
			"reason_code":      req.ReasonCode,
			"refund_requested": req.Refund,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("ticket changed state concurrently")
		}

		if err := s.Registry.Release(ctx, ticket.SectorID, ticket.SeatID, ticket.ID); err != nil {
			return err
		}
		return s.Events.ApplyCancellation(ctx, ticket.TicketedEventID, 1, ticket.GrossAmount)
	})
	if err != nil {
		return nil, err
	}

	ticket.Status = StatusCancelled
	ticket.CancelledAt = &now
	ticket.ReasonCode = &req.ReasonCode
	ticket.RefundRequested = req.Refund

	logger.GetDefault().LogTicketCancelled(ctx, ticket.ID.String(), req.ReasonCode, req.Refund)
	metrics.TrackTransition(StatusCancelled.String())
	s.Registry.AvailabilityChanged(ctx, ticket.SectorID)
	notifications.PublishAsync(ctx, s.Publisher,
		notifications.NewLifecycleEvent(notifications.EventTicketCancelled, ticket.TicketedEventID).
			WithTickets(ticket.ID).
			WithSectors(ticket.SectorID).
			WithTransaction(ticket.TransactionID).
			WithReason(req.ReasonCode).
			WithActor(req.ActorID).
			At(now).
			Build())

	if !req.Refund {
		return ticket, nil
	}
	if s.refunder == nil {
		return ticket, apperror.ExternalRefundFailure("refunds are not configured", nil)
	}

	refunded, err := s.refunder.RequestRefund(ctx, ticket.ID)
	if err != nil {
		if current, getErr := s.Repo.GetByID(ctx, ticket.ID); getErr == nil {
			ticket = current
		}
		return ticket, err
	}
	return refunded, nil
}

// PARTICIPANT

func (s *service) ChangeParticipant(ctx context.Context, ticketID uuid.UUID, firstName, lastName string) (*Ticket, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)

	ticket, err := s.Repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	event, err := s.Events.GetByID(ctx, ticket.TicketedEventID)
	if err != nil {
		return nil, err
	}
	if !event.AllowsChangeName {
		return nil, apperror.Validation("this event does not allow participant changes")
	}
	if event.RequiresNominative && (firstName == "" || lastName == "") {
		return nil, apperror.Validation("participant first and last name are required for this event")
	}
	if ticket.Status != StatusValid {
		return nil, apperror.Conflict("ticket is %s; participant cannot change", ticket.Status)
	}

	ok, err := s.Repo.UpdateParticipant(ctx, ticketID, optionalString(firstName), optionalString(lastName))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict("ticket changed state concurrently")
	}

	logger.GetDefault().InfoWithContext(ctx, "Ticket participant changed", map[string]interface{}{
		"ticket_id": ticketID.String(),
	})
	return s.Repo.GetByID(ctx, ticketID)
}

// READS

func (s *service) GetTicket(ctx context.Context, ticketID uuid.UUID) (*Ticket, error) {
	return s.Repo.GetByID(ctx, ticketID)
}

func (s *service) ListEventTickets(ctx context.Context, eventID uuid.UUID, page, limit int) ([]Ticket, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if _, err := s.Events.GetByID(ctx, eventID); err != nil {
		return nil, 0, err
	}
	return s.Repo.ListByEvent(ctx, eventID, limit, (page-1)*limit)
}

func (s *service) ListTransactionTickets(ctx context.Context, transactionID uuid.UUID) ([]Ticket, error) {
	if _, err := s.Repo.GetTransaction(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.Repo.ListByTransaction(ctx, transactionID)
}

func (s *service) VerifySeal(ctx context.Context, ticketID uuid.UUID) (*SealVerification, error) {
	ticket, err := s.Repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	computed := s.Sealer.ComputeSeal(SealInputOf(ticket))
	return &SealVerification{
		TicketID:          ticket.ID.String(),
		ProgressiveNumber: ticket.ProgressiveNumber,
		StoredSeal:        ticket.FiscalSealCode,
		ComputedSeal:      computed,
		Valid:             s.Sealer.VerifySeal(SealInputOf(ticket), ticket.FiscalSealCode),
	}, nil
}

// SealInputOf extracts the sealed fields of a stored ticket
func SealInputOf(t *Ticket) fiscal.SealInput {
	return fiscal.SealInput{
		SectorCode:        t.SectorCode,
		TicketTypeCode:    t.TicketTypeCode.String(),
		ProgressiveNumber: t.ProgressiveNumber,
		EmissionDate:      t.EmissionDateStr,
		EmissionTime:      t.EmissionTimeStr,
		GrossAmount:       t.GrossAmount,
	}
}
