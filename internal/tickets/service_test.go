package tickets_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/cancellation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/fiscal"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/payments"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/clock"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/testutil/memstore"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2026, 3, 15, 20, 30, 0, 0, time.UTC)

type fixture struct {
	store    *memstore.Store
	svc      tickets.Service
	gateway  *payments.MockGateway
	sealer   *fiscal.Sealer
	event    events.TicketedEvent
	general  seats.Sector
	numbered seats.Sector
	seats    []seats.Seat
}

func newFixture(t *testing.T, device fiscal.DeviceMonitor) *fixture {
	t.Helper()
	store := memstore.New()
	clk := clock.NewFixed(issuedAt)

	sealer, err := fiscal.NewSealer("test-key")
	require.NoError(t, err)

	f := &fixture{store: store, gateway: payments.NewMockGateway(), sealer: sealer}
	f.event = store.AddEvent(events.TicketedEvent{
		Name:              "Concerto",
		TotalCapacity:     1000,
		MaxTicketsPerUser: 10,
		AllowsChangeName:  true,
	})
	f.general = store.AddSector(seats.Sector{
		TicketedEventID: f.event.ID,
		SectorCode:      "GA",
		Name:            "Parterre",
		Capacity:        100,
		AvailableSeats:  100,
		PriceIntero:     decimal.RequireFromString("20.00"),
		PriceRidotto:    decimal.NewNullDecimal(decimal.RequireFromString("15.00")),
		Prevendita:      decimal.RequireFromString("2.00"),
	})
	f.numbered = store.AddSector(seats.Sector{
		TicketedEventID: f.event.ID,
		SectorCode:      "PL",
		Name:            "Platea",
		Capacity:        4,
		AvailableSeats:  4,
		PriceIntero:     decimal.RequireFromString("40.00"),
		IsNumbered:      true,
	})
	for i := 1; i <= 4; i++ {
		f.seats = append(f.seats, store.AddSeat(seats.Seat{
			SectorID:   f.numbered.ID,
			Row:        "A",
			SeatNumber: strconv.Itoa(i),
			Position:   i,
		}))
	}
	for _, reason := range cancellation.DefaultReasons() {
		store.AddReason(reason)
	}

	registry := seats.NewService(store.Seats(), store, clk)
	f.svc = tickets.NewService(tickets.Dependencies{
		Repo:     store.Tickets(),
		Events:   store.Events(),
		Registry: registry,
		Numberer: store.Numberer(),
		Sealer:   sealer,
		Device:   device,
		Location: time.UTC,
		Tx:       store,
		Gateway:  f.gateway,
		Clock:    clk,
	})
	coordinator := cancellation.NewService(store.Reasons(), store.Tickets(), store, f.gateway,
		cancellation.NewLocalRefundLocker(), nil, clk)
	tickets.SetRefunder(f.svc, coordinator, coordinator)
	return f
}

func (f *fixture) issueGeneral(t *testing.T, quantity int) *tickets.IssueResult {
	t.Helper()
	result, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.general.ID,
		TicketType:      seats.TicketTypeIntero,
		Quantity:        quantity,
		PaymentMethod:   tickets.PaymentCash,
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) issueCard(t *testing.T) *tickets.Ticket {
	t.Helper()
	result, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.general.ID,
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
		PaymentMethod:   tickets.PaymentCard,
		PaymentToken:    "pm_card_visa",
	})
	require.NoError(t, err)
	return &result.Tickets[0]
}

func TestIssueCommitsFiscalTicket(t *testing.T) {
	f := newFixture(t, nil)

	result := f.issueGeneral(t, 2)

	require.Len(t, result.Tickets, 2)
	require.NotNil(t, result.Transaction)
	assert.True(t, result.Transaction.TotalAmount.Equal(decimal.RequireFromString("44.00")))
	assert.Equal(t, 2, result.Transaction.TicketsCount)

	for i, ticket := range result.Tickets {
		assert.Equal(t, int64(i+1), ticket.ProgressiveNumber)
		assert.Equal(t, "20260315", ticket.EmissionDateStr)
		assert.Equal(t, "2030", ticket.EmissionTimeStr)
		assert.Equal(t, tickets.StatusValid, ticket.Status)
		assert.True(t, ticket.GrossAmount.Equal(decimal.RequireFromString("22.00")))
		assert.Equal(t, f.sealer.ComputeSeal(tickets.SealInputOf(&ticket)), ticket.FiscalSealCode)
		assert.Equal(t, result.Transaction.ID, *ticket.TransactionID)
	}

	assert.Equal(t, 98, f.store.Sector(f.general.ID).AvailableSeats)
	event := f.store.Event(f.event.ID)
	assert.Equal(t, 2, event.TicketsSold)
	assert.True(t, event.Revenue.Equal(decimal.RequireFromString("44.00")))
	assert.Equal(t, int64(2), f.store.Counter(f.event.ID))
}

// memstore serializes transactions; TestPostgresIssuanceUnderContention
// covers real row-lock contention.
func TestConcurrentIssuanceIsGapless(t *testing.T) {
	f := newFixture(t, nil)

	const attempts = 110
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		numbers   []int64
		exhausted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
				TicketedEventID: f.event.ID,
				SectorID:        f.general.ID,
				TicketType:      seats.TicketTypeIntero,
				Quantity:        1,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.Equal(t, apperror.KindInventoryExhausted, apperror.KindOf(err))
				exhausted++
				return
			}
			numbers = append(numbers, result.Tickets[0].ProgressiveNumber)
		}()
	}
	wg.Wait()

	require.Len(t, numbers, 100)
	assert.Equal(t, attempts-100, exhausted)

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, n := range numbers {
		assert.Equal(t, int64(i+1), n)
	}
	assert.Equal(t, 0, f.store.Sector(f.general.ID).AvailableSeats)
	assert.Equal(t, 100, f.store.Event(f.event.ID).TicketsSold)
	assert.Equal(t, int64(100), f.store.Counter(f.event.ID))
}

func TestConcurrentRequestsForOneSeat(t *testing.T) {
	f := newFixture(t, nil)
	seatID := f.seats[2].ID

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  int
		failures []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
				TicketedEventID: f.event.ID,
				SectorID:        f.numbered.ID,
				SeatIDs:         []uuid.UUID{seatID},
				TicketType:      seats.TicketTypeIntero,
				Quantity:        1,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			winners++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	require.Len(t, failures, 1)
	assert.Equal(t, apperror.KindInventoryExhausted, apperror.KindOf(failures[0]))
	assert.Equal(t, seats.SeatStatusSold, f.store.Seat(seatID).Status)
	assert.Equal(t, 3, f.store.Sector(f.numbered.ID).AvailableSeats)
	assert.Equal(t, int64(1), f.store.Counter(f.event.ID), "the losing request must not consume a number")
}

func TestIssueRollsBackWholeBatch(t *testing.T) {
	f := newFixture(t, nil)
	f.issueGeneral(t, 1)
	f.store.FailAfterCreate = 3

	_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.general.ID,
		TicketType:      seats.TicketTypeIntero,
		Quantity:        4,
		PaymentMethod:   tickets.PaymentCash,
	})
	require.Error(t, err)

	assert.Len(t, f.store.EventTickets(f.event.ID), 1)
	assert.Equal(t, int64(1), f.store.Counter(f.event.ID))
	assert.Equal(t, 99, f.store.Sector(f.general.ID).AvailableSeats)
	assert.Equal(t, 1, f.store.Event(f.event.ID).TicketsSold)

	f.store.FailAfterCreate = 0
	result := f.issueGeneral(t, 1)
	assert.Equal(t, int64(2), result.Tickets[0].ProgressiveNumber)
}

func TestIssueNumberingFailureRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	f.store.NumberingErr = errors.New("counter row locked out")

	_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.numbered.ID,
		SeatIDs:         []uuid.UUID{f.seats[0].ID},
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
	})

	assert.Equal(t, apperror.KindNumberingFailure, apperror.KindOf(err))
	assert.Equal(t, seats.SeatStatusAvailable, f.store.Seat(f.seats[0].ID).Status)
	assert.Equal(t, 4, f.store.Sector(f.numbered.ID).AvailableSeats)
	assert.Empty(t, f.store.EventTickets(f.event.ID))
}

func TestIssueValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	base := func() tickets.IssueRequest {
		return tickets.IssueRequest{
			TicketedEventID: f.event.ID,
			SectorID:        f.general.ID,
			TicketType:      seats.TicketTypeIntero,
			Quantity:        1,
		}
	}

	cases := map[string]func(*tickets.IssueRequest){
		"zero quantity":      func(r *tickets.IssueRequest) { r.Quantity = 0 },
		"unknown type":       func(r *tickets.IssueRequest) { r.TicketType = "VIP" },
		"over per-user max":  func(r *tickets.IssueRequest) { r.Quantity = 11 },
		"seats on GA sector": func(r *tickets.IssueRequest) { r.SeatIDs = []uuid.UUID{f.seats[0].ID} },
		"seat count mismatch": func(r *tickets.IssueRequest) {
			r.SectorID = f.numbered.ID
			r.Quantity = 2
			r.SeatIDs = []uuid.UUID{f.seats[0].ID}
		},
		"duplicate seats": func(r *tickets.IssueRequest) {
			r.SectorID = f.numbered.ID
			r.Quantity = 2
			r.SeatIDs = []uuid.UUID{f.seats[0].ID, f.seats[0].ID}
		},
		"unknown payment method": func(r *tickets.IssueRequest) { r.PaymentMethod = "bitcoin" },
		"card without token":     func(r *tickets.IssueRequest) { r.PaymentMethod = tickets.PaymentCard },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := base()
			mutate(&req)
			_, err := f.svc.Issue(ctx, req)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}

	assert.Empty(t, f.store.EventTickets(f.event.ID))
	assert.Equal(t, int64(0), f.store.Counter(f.event.ID))
}

func TestIssueRequiresNominativeNames(t *testing.T) {
	f := newFixture(t, nil)
	event := f.store.Event(f.event.ID)
	event.RequiresNominative = true
	f.store.AddEvent(event)

	req := tickets.IssueRequest{
		TicketedEventID:      f.event.ID,
		SectorID:             f.general.ID,
		TicketType:           seats.TicketTypeIntero,
		Quantity:             1,
		ParticipantFirstName: "",
		ParticipantLastName:  "Bianchi",
	}
	_, err := f.svc.Issue(context.Background(), req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, 100, f.store.Sector(f.general.ID).AvailableSeats)
	assert.Zero(t, f.store.Counter(f.event.ID))
	assert.Empty(t, f.store.EventTickets(f.event.ID))

	req.ParticipantFirstName = "Giulia"
	req.ParticipantLastName = "  Bianchi "
	result, err := f.svc.Issue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Bianchi", *result.Tickets[0].ParticipantLastName)
}

func TestIssueRejectsWhenNotOnSale(t *testing.T) {
	f := newFixture(t, nil)
	event := f.store.Event(f.event.ID)
	event.TicketingStatus = events.TicketingStatusSuspended
	f.store.AddEvent(event)

	_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.general.ID,
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestIssueRequiresFiscalDevice(t *testing.T) {
	f := newFixture(t, fiscal.StaticDeviceMonitor(false))

	_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.general.ID,
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
	})
	assert.Equal(t, apperror.KindDeviceNotReady, apperror.KindOf(err))
	assert.Equal(t, int64(0), f.store.Counter(f.event.ID))
}

func TestIssueCardPayment(t *testing.T) {
	t.Run("charge declined", func(t *testing.T) {
		f := newFixture(t, nil)
		f.gateway.FailCharges = payments.ErrDeclined

		_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
			TicketedEventID: f.event.ID,
			SectorID:        f.general.ID,
			TicketType:      seats.TicketTypeIntero,
			Quantity:        1,
			PaymentMethod:   tickets.PaymentCard,
			PaymentToken:    "pm_card_visa",
		})
		assert.Equal(t, apperror.KindPaymentFailure, apperror.KindOf(err))
		assert.Empty(t, f.store.EventTickets(f.event.ID))
	})

	t.Run("charge voided when issuance fails", func(t *testing.T) {
		f := newFixture(t, nil)
		f.store.NumberingErr = errors.New("sequence unavailable")

		_, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
			TicketedEventID: f.event.ID,
			SectorID:        f.general.ID,
			TicketType:      seats.TicketTypeIntero,
			Quantity:        1,
			PaymentMethod:   tickets.PaymentCard,
			PaymentToken:    "pm_card_visa",
		})
		assert.Equal(t, apperror.KindNumberingFailure, apperror.KindOf(err))
		assert.Equal(t, 1, f.gateway.ChargeCalls)
		assert.Equal(t, 1, f.gateway.Refunds())
	})

	t.Run("omaggio skips the gateway", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.svc.Issue(context.Background(), tickets.IssueRequest{
			TicketedEventID: f.event.ID,
			SectorID:        f.general.ID,
			TicketType:      seats.TicketTypeOmaggio,
			Quantity:        1,
			PaymentMethod:   tickets.PaymentCard,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, f.gateway.ChargeCalls)
		assert.True(t, result.Tickets[0].GrossAmount.IsZero())
	})
}

func TestMarkUsed(t *testing.T) {
	f := newFixture(t, nil)
	ticket := f.issueGeneral(t, 1).Tickets[0]

	used, err := f.svc.MarkUsed(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusUsed, used.Status)
	assert.Equal(t, issuedAt, *used.UsedAt)

	_, err = f.svc.MarkUsed(context.Background(), ticket.ID)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.svc.Cancel(context.Background(), tickets.CancelRequest{TicketID: ticket.ID, ReasonCode: "5.2"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.svc.MarkUsed(context.Background(), uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCancelReleasesInventory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	result, err := f.svc.Issue(ctx, tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.numbered.ID,
		SeatIDs:         []uuid.UUID{f.seats[1].ID},
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
	})
	require.NoError(t, err)
	ticket := result.Tickets[0]

	cancelled, err := f.svc.Cancel(ctx, tickets.CancelRequest{TicketID: ticket.ID, ReasonCode: "5.2"})
	require.NoError(t, err)
	assert.Equal(t, tickets.StatusCancelled, cancelled.Status)
	assert.Equal(t, "5.2", *cancelled.ReasonCode)

	assert.Equal(t, seats.SeatStatusAvailable, f.store.Seat(f.seats[1].ID).Status)
	assert.Equal(t, 4, f.store.Sector(f.numbered.ID).AvailableSeats)
	event := f.store.Event(f.event.ID)
	assert.Equal(t, 0, event.TicketsSold)
	assert.True(t, event.Revenue.IsZero())

	_, err = f.svc.Cancel(ctx, tickets.CancelRequest{TicketID: ticket.ID, ReasonCode: "5.2"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, 4, f.store.Sector(f.numbered.ID).AvailableSeats)

	// the seat can be sold again under a new number
	again, err := f.svc.Issue(ctx, tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.numbered.ID,
		SeatIDs:         []uuid.UUID{f.seats[1].ID},
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Tickets[0].ProgressiveNumber)
}

func TestCancelValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	result, err := f.svc.Issue(ctx, tickets.IssueRequest{
		TicketedEventID: f.event.ID,
		SectorID:        f.general.ID,
		TicketType:      seats.TicketTypeIntero,
		Quantity:        1,
	})
	require.NoError(t, err)
	ticket := result.Tickets[0]
	require.Nil(t, ticket.TransactionID)

	_, err = f.svc.Cancel(ctx, tickets.CancelRequest{TicketID: ticket.ID, ReasonCode: "9.9"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.Cancel(ctx, tickets.CancelRequest{TicketID: ticket.ID, ReasonCode: "5.2", Refund: true})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.Equal(t, tickets.StatusValid, f.store.Ticket(ticket.ID).Status)
	assert.Equal(t, 99, f.store.Sector(f.general.ID).AvailableSeats)
}

func TestCancelWithRefund(t *testing.T) {
	t.Run("card refund succeeds", func(t *testing.T) {
		f := newFixture(t, nil)
		ticket := f.issueCard(t)

		refunded, err := f.svc.Cancel(context.Background(), tickets.CancelRequest{
			TicketID: ticket.ID, ReasonCode: "5.2", Refund: true,
		})
		require.NoError(t, err)
		require.NotNil(t, refunded.RefundedAt)
		assert.True(t, refunded.RefundAmount.Decimal.Equal(decimal.RequireFromString("22.00")))
		assert.Equal(t, 1, f.gateway.Refunds())

		txn := f.store.Transaction(*ticket.TransactionID)
		assert.True(t, txn.RefundedAmount.Equal(decimal.RequireFromString("22.00")))
		assert.Equal(t, tickets.TransactionRefunded, txn.Status)
	})

	t.Run("refund failure keeps the cancellation", func(t *testing.T) {
		f := newFixture(t, nil)
		ticket := f.issueCard(t)
		f.gateway.SetFailRefunds(payments.ErrUnavailable)

		current, err := f.svc.Cancel(context.Background(), tickets.CancelRequest{
			TicketID: ticket.ID, ReasonCode: "5.2", Refund: true,
		})
		assert.Equal(t, apperror.KindExternalRefundFailure, apperror.KindOf(err))
		require.NotNil(t, current)
		assert.Equal(t, tickets.StatusCancelled, current.Status)
		assert.Nil(t, current.RefundedAt)
		assert.Equal(t, 1, current.RefundAttempts)
		assert.Equal(t, 100, f.store.Sector(f.general.ID).AvailableSeats)
	})

	t.Run("cash sale refunds at the box office", func(t *testing.T) {
		f := newFixture(t, nil)
		ticket := f.issueGeneral(t, 1).Tickets[0]

		refunded, err := f.svc.Cancel(context.Background(), tickets.CancelRequest{
			TicketID: ticket.ID, ReasonCode: "5.1", Refund: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "CASH", *refunded.RefundReference)
		assert.Equal(t, 0, f.gateway.Refunds())
	})
}

func TestChangeParticipant(t *testing.T) {
	f := newFixture(t, nil)
	ticket := f.issueGeneral(t, 1).Tickets[0]

	updated, err := f.svc.ChangeParticipant(context.Background(), ticket.ID, "Marco", "Rossi")
	require.NoError(t, err)
	assert.Equal(t, "Marco", *updated.ParticipantFirstName)

	_, err = f.svc.Cancel(context.Background(), tickets.CancelRequest{TicketID: ticket.ID, ReasonCode: "5.2"})
	require.NoError(t, err)
	_, err = f.svc.ChangeParticipant(context.Background(), ticket.ID, "Anna", "Verdi")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestVerifySeal(t *testing.T) {
	f := newFixture(t, nil)
	ticket := f.issueGeneral(t, 1).Tickets[0]

	verification, err := f.svc.VerifySeal(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, verification.Valid)
	assert.Equal(t, ticket.FiscalSealCode, verification.ComputedSeal)
}

func TestListings(t *testing.T) {
	f := newFixture(t, nil)
	result := f.issueGeneral(t, 3)
	f.issueGeneral(t, 2)

	page, total, err := f.svc.ListEventTickets(context.Background(), f.event.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].ProgressiveNumber)

	byTxn, err := f.svc.ListTransactionTickets(context.Background(), result.Transaction.ID)
	require.NoError(t, err)
	assert.Len(t, byTxn, 3)

	_, err = f.svc.ListTransactionTickets(context.Background(), uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
