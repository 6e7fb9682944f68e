package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/cancellation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EVENTS

type eventRepo struct{ s *Store }

func (r eventRepo) GetByID(ctx context.Context, id uuid.UUID) (*events.TicketedEvent, error) {
	defer r.s.lock(ctx)()
	e, ok := r.s.state.events[id]
	if !ok {
		return nil, apperror.NotFound("ticketed event %s not found", id)
	}
	return &e, nil
}

func (r eventRepo) ApplySale(ctx context.Context, id uuid.UUID, count int, amount decimal.Decimal) error {
	defer r.s.lock(ctx)()
	e, ok := r.s.state.events[id]
	if !ok || e.TicketingStatus != events.TicketingStatusActive || e.TicketsSold+count > e.TotalCapacity {
		return apperror.InventoryExhausted("event %s has no remaining capacity or is not on sale", id)
	}
	e.TicketsSold += count
	e.Revenue = e.Revenue.Add(amount)
	r.s.state.events[id] = e
	return nil
}

func (r eventRepo) ApplyCancellation(ctx context.Context, id uuid.UUID, count int, amount decimal.Decimal) error {
	defer r.s.lock(ctx)()
	e, ok := r.s.state.events[id]
	if !ok || e.TicketsSold < count {
		return apperror.Conflict("event %s counters would go negative", id)
	}
	e.TicketsSold -= count
	e.Revenue = e.Revenue.Sub(amount)
	r.s.state.events[id] = e
	return nil
}

func (r eventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to events.TicketingStatus) error {
	defer r.s.lock(ctx)()
	e, ok := r.s.state.events[id]
	if !ok || e.TicketingStatus != from {
		return apperror.Conflict("ticketing status changed concurrently")
	}
	e.TicketingStatus = to
	r.s.state.events[id] = e
	return nil
}

// SEATS

type seatRepo struct{ s *Store }

func (r seatRepo) GetSector(ctx context.Context, id uuid.UUID) (*seats.Sector, error) {
	defer r.s.lock(ctx)()
	sec, ok := r.s.state.sectors[id]
	if !ok {
		return nil, apperror.NotFound("sector %s not found", id)
	}
	return &sec, nil
}

func (r seatRepo) GetSectorsByEvent(ctx context.Context, eventID uuid.UUID) ([]seats.Sector, error) {
	defer r.s.lock(ctx)()
	var out []seats.Sector
	for _, sec := range r.s.state.sectors {
		if sec.TicketedEventID == eventID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectorCode < out[j].SectorCode })
	return out, nil
}

func (r seatRepo) SetSalesSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	defer r.s.lock(ctx)()
	sec, ok := r.s.state.sectors[id]
	if !ok {
		return apperror.NotFound("sector %s not found", id)
	}
	sec.SalesSuspended = suspended
	r.s.state.sectors[id] = sec
	return nil
}

func (r seatRepo) TakeSlot(ctx context.Context, sectorID uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()
	sec, ok := r.s.state.sectors[sectorID]
	if !ok || sec.AvailableSeats <= 0 || sec.SalesSuspended {
		return false, nil
	}
	sec.AvailableSeats--
	r.s.state.sectors[sectorID] = sec
	return true, nil
}

func (r seatRepo) WithholdSlot(ctx context.Context, sectorID uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()
	sec, ok := r.s.state.sectors[sectorID]
	if !ok || sec.AvailableSeats <= 0 {
		return false, nil
	}
	sec.AvailableSeats--
	r.s.state.sectors[sectorID] = sec
	return true, nil
}

func (r seatRepo) ReturnSlot(ctx context.Context, sectorID uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()
	sec, ok := r.s.state.sectors[sectorID]
	if !ok || sec.AvailableSeats >= sec.Capacity {
		return false, nil
	}
	sec.AvailableSeats++
	r.s.state.sectors[sectorID] = sec
	return true, nil
}

func (r seatRepo) RecordRelease(ctx context.Context, release seats.Release) (bool, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.state.releases[release.ReservationID]; ok {
		return false, nil
	}
	r.s.state.releases[release.ReservationID] = release
	return true, nil
}

func (r seatRepo) GetSeat(ctx context.Context, id uuid.UUID) (*seats.Seat, error) {
	defer r.s.lock(ctx)()
	seat, ok := r.s.state.seats[id]
	if !ok {
		return nil, apperror.NotFound("seat %s not found", id)
	}
	return &seat, nil
}

func (r seatRepo) GetSeatsBySector(ctx context.Context, sectorID uuid.UUID) ([]seats.Seat, error) {
	defer r.s.lock(ctx)()
	return r.s.sectorSeats(sectorID, ""), nil
}

func (r seatRepo) CountSeatsByStatus(ctx context.Context, sectorID uuid.UUID) (map[seats.SeatStatus]int, error) {
	defer r.s.lock(ctx)()
	counts := make(map[seats.SeatStatus]int)
	for _, seat := range r.s.state.seats {
		if seat.SectorID == sectorID {
			counts[seat.Status]++
		}
	}
	return counts, nil
}

func (r seatRepo) ClaimSeat(ctx context.Context, sectorID, seatID uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()
	seat, ok := r.s.state.seats[seatID]
	if !ok || seat.SectorID != sectorID || seat.Status != seats.SeatStatusAvailable {
		return false, nil
	}
	seat.Status = seats.SeatStatusSold
	r.s.state.seats[seatID] = seat
	return true, nil
}

func (r seatRepo) ClaimAnySeat(ctx context.Context, sectorID uuid.UUID) (*seats.Seat, error) {
	defer r.s.lock(ctx)()
	available := r.s.sectorSeats(sectorID, seats.SeatStatusAvailable)
	if len(available) == 0 {
		return nil, nil
	}
	seat := available[0]
	seat.Status = seats.SeatStatusSold
	r.s.state.seats[seat.ID] = seat
	return &seat, nil
}

func (r seatRepo) ReleaseSeat(ctx context.Context, sectorID, seatID uuid.UUID) (bool, error) {
	defer r.s.lock(ctx)()
	seat, ok := r.s.state.seats[seatID]
	if !ok || seat.SectorID != sectorID {
		return false, nil
	}
	if seat.Status != seats.SeatStatusSold && seat.Status != seats.SeatStatusReserved {
		return false, nil
	}
	seat.Status = seats.SeatStatusAvailable
	r.s.state.seats[seatID] = seat
	return true, nil
}

func (r seatRepo) UpdateSeatStatus(ctx context.Context, seatID uuid.UUID, from, to seats.SeatStatus) (bool, error) {
	defer r.s.lock(ctx)()
	seat, ok := r.s.state.seats[seatID]
	if !ok || seat.Status != from {
		return false, nil
	}
	seat.Status = to
	r.s.state.seats[seatID] = seat
	return true, nil
}

// sectorSeats returns seats ordered by row and position; an empty status
// matches all. Caller holds the lock.
func (s *Store) sectorSeats(sectorID uuid.UUID, status seats.SeatStatus) []seats.Seat {
	var out []seats.Seat
	for _, seat := range s.state.seats {
		if seat.SectorID == sectorID && (status == "" || seat.Status == status) {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// FISCAL

// Numberer implements fiscal.Numberer over the store counters
type Numberer struct{ s *Store }

func (n *Numberer) NextProgressiveNumber(ctx context.Context, eventID uuid.UUID) (int64, error) {
	if !n.s.inTx(ctx) {
		return 0, apperror.NumberingFailure("progressive number requested outside a transaction", nil)
	}
	if n.s.NumberingErr != nil {
		err := n.s.NumberingErr
		n.s.NumberingErr = nil
		return 0, apperror.NumberingFailure("failed to allocate progressive number", err)
	}
	n.s.state.counters[eventID]++
	return n.s.state.counters[eventID], nil
}

func (n *Numberer) LastProgressiveNumber(ctx context.Context, eventID uuid.UUID) (int64, error) {
	defer n.s.lock(ctx)()
	return n.s.state.counters[eventID], nil
}

// TICKETS

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(ctx context.Context, t *tickets.Ticket) error {
	defer r.s.lock(ctx)()
	if r.s.FailAfterCreate > 0 && len(r.s.state.tickets) >= r.s.FailAfterCreate {
		return apperror.NumberingFailure("injected insert failure", nil)
	}
	for _, existing := range r.s.state.tickets {
		if existing.TicketedEventID == t.TicketedEventID && existing.ProgressiveNumber == t.ProgressiveNumber {
			return apperror.NumberingFailure("progressive number already issued", nil)
		}
		if t.SeatID != nil && existing.SeatID != nil && *existing.SeatID == *t.SeatID && existing.Status.IsLive() {
			return apperror.InventoryExhausted("seat already has a live ticket")
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.state.tickets[t.ID] = *t
	return nil
}

func (r ticketRepo) GetByID(ctx context.Context, id uuid.UUID) (*tickets.Ticket, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.state.tickets[id]
	if !ok {
		return nil, apperror.NotFound("ticket %s not found", id)
	}
	return &t, nil
}

func (r ticketRepo) ListByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]tickets.Ticket, int64, error) {
	defer r.s.lock(ctx)()
	all := sortedTickets(r.s.state.tickets, func(t tickets.Ticket) bool { return t.TicketedEventID == eventID })
	total := int64(len(all))
	if offset >= len(all) {
		return []tickets.Ticket{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r ticketRepo) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]tickets.Ticket, error) {
	defer r.s.lock(ctx)()
	return sortedTickets(r.s.state.tickets, func(t tickets.Ticket) bool {
		return t.TransactionID != nil && *t.TransactionID == transactionID
	}), nil
}

func (r ticketRepo) Transition(ctx context.Context, id uuid.UUID, from, to tickets.Status, updates map[string]interface{}) (bool, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.state.tickets[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	for key, value := range updates {
		switch key {
		case "used_at":
			at := value.(time.Time)
			t.UsedAt = &at
		case "cancelled_at":
			at := value.(time.Time)
			t.CancelledAt = &at
		case "reason_code":
			code := value.(string)
			t.ReasonCode = &code
		case "refund_requested":
			t.RefundRequested = value.(bool)
		}
	}
	r.s.state.tickets[id] = t
	return true, nil
}

func (r ticketRepo) UpdateParticipant(ctx context.Context, id uuid.UUID, firstName, lastName *string) (bool, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.state.tickets[id]
	if !ok || t.Status != tickets.StatusValid {
		return false, nil
	}
	t.ParticipantFirstName, t.ParticipantLastName = firstName, lastName
	r.s.state.tickets[id] = t
	return true, nil
}

func (r ticketRepo) MarkRefunded(ctx context.Context, id uuid.UUID, reference string, amount decimal.Decimal, at time.Time) (bool, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.state.tickets[id]
	if !ok || t.Status != tickets.StatusCancelled || t.RefundedAt != nil {
		return false, nil
	}
	t.RefundedAt = &at
	t.RefundAmount = decimal.NewNullDecimal(amount)
	t.RefundReference = &reference
	t.LastRefundError = nil
	t.RefundAttempts++
	r.s.state.tickets[id] = t
	return true, nil
}

func (r ticketRepo) RecordRefundFailure(ctx context.Context, id uuid.UUID, reason string) error {
	defer r.s.lock(ctx)()
	t, ok := r.s.state.tickets[id]
	if !ok || t.RefundedAt != nil {
		return nil
	}
	t.RefundAttempts++
	t.LastRefundError = &reason
	r.s.state.tickets[id] = t
	return nil
}

func (r ticketRepo) ListPendingRefunds(ctx context.Context, maxAttempts, limit int) ([]tickets.Ticket, error) {
	defer r.s.lock(ctx)()
	pending := sortedTickets(r.s.state.tickets, func(t tickets.Ticket) bool {
		return t.IsRefundPending() && t.RefundAttempts < maxAttempts
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r ticketRepo) CreateTransaction(ctx context.Context, txn *tickets.Transaction) error {
	defer r.s.lock(ctx)()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now().UTC()
	r.s.state.transactions[txn.ID] = *txn
	return nil
}

func (r ticketRepo) GetTransaction(ctx context.Context, id uuid.UUID) (*tickets.Transaction, error) {
	defer r.s.lock(ctx)()
	txn, ok := r.s.state.transactions[id]
	if !ok {
		return nil, apperror.NotFound("transaction %s not found", id)
	}
	return &txn, nil
}

func (r ticketRepo) AddTransactionRefund(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	defer r.s.lock(ctx)()
	txn, ok := r.s.state.transactions[id]
	if !ok || txn.RefundedAmount.Add(amount).GreaterThan(txn.TotalAmount) {
		return apperror.Conflict("refund would exceed transaction %s total", id)
	}
	txn.RefundedAmount = txn.RefundedAmount.Add(amount)
	txn.Status = tickets.TransactionRefunded
	r.s.state.transactions[id] = txn
	return nil
}

func sortedTickets(all map[uuid.UUID]tickets.Ticket, keep func(tickets.Ticket) bool) []tickets.Ticket {
	out := []tickets.Ticket{}
	for _, t := range all {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProgressiveNumber < out[j].ProgressiveNumber })
	return out
}

// CAUSALI

type reasonRepo struct{ s *Store }

func (r reasonRepo) ListActive(ctx context.Context) ([]cancellation.Reason, error) {
	defer r.s.lock(ctx)()
	var out []cancellation.Reason
	for _, reason := range r.s.state.reasons {
		if reason.Active {
			out = append(out, reason)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r reasonRepo) GetByCode(ctx context.Context, code string) (*cancellation.Reason, error) {
	defer r.s.lock(ctx)()
	reason, ok := r.s.state.reasons[code]
	if !ok {
		return nil, nil
	}
	return &reason, nil
}

func (r reasonRepo) EnsureDefaults(ctx context.Context, reasons []cancellation.Reason) error {
	defer r.s.lock(ctx)()
	for _, reason := range reasons {
		if _, exists := r.s.state.reasons[reason.Code]; !exists {
			r.s.state.reasons[reason.Code] = reason
		}
	}
	return nil
}
