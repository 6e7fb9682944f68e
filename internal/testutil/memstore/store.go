// Package memstore is an in-memory, transactional stand-in for the PostgreSQL
// repositories. A transaction holds a store-wide lock and restores a snapshot
// when its function fails, which gives the same all-or-nothing behaviour as
// the real database for service-level tests.
//
// Transactions run one at a time, so concurrent callers never interleave
// inside one. Tests built on it check outcomes under parallel callers, not
// row-lock contention; that is covered by the PostgreSQL tests run with
// TEST_DATABASE_URL.
package memstore

import (
	"context"
	"sync"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/cancellation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"

	"github.com/google/uuid"
)

type state struct {
	events       map[uuid.UUID]events.TicketedEvent
	sectors      map[uuid.UUID]seats.Sector
	seats        map[uuid.UUID]seats.Seat
	counters     map[uuid.UUID]int64
	tickets      map[uuid.UUID]tickets.Ticket
	transactions map[uuid.UUID]tickets.Transaction
	reasons      map[string]cancellation.Reason
	releases     map[uuid.UUID]seats.Release
}

func newState() *state {
	return &state{
		events:       make(map[uuid.UUID]events.TicketedEvent),
		sectors:      make(map[uuid.UUID]seats.Sector),
		seats:        make(map[uuid.UUID]seats.Seat),
		counters:     make(map[uuid.UUID]int64),
		tickets:      make(map[uuid.UUID]tickets.Ticket),
		transactions: make(map[uuid.UUID]tickets.Transaction),
		reasons:      make(map[string]cancellation.Reason),
		releases:     make(map[uuid.UUID]seats.Release),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.sectors {
		c.sectors[k] = v
	}
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.reasons {
		c.reasons[k] = v
	}
	for k, v := range s.releases {
		c.releases[k] = v
	}
	return c
}

// Store is safe for concurrent use
type Store struct {
	mu    sync.Mutex
	state *state

	// NumberingErr, when set, is returned by the next progressive number
	// allocation.
	NumberingErr error
	// FailAfterCreate, when set, fails ticket inserts once this many tickets
	// exist in the store.
	FailAfterCreate int
}

type txMarker struct{ store *Store }

func New() *Store {
	return &Store{state: newState()}
}

func (s *Store) inTx(ctx context.Context) bool {
	m, ok := ctx.Value(txMarker{store: s}).(bool)
	return ok && m
}

// lock takes the store lock unless ctx already runs inside one of this
// store's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTx implements database.Transactor
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txMarker{store: s}, true)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Repository views

func (s *Store) Events() events.Repository        { return eventRepo{s} }
func (s *Store) Seats() seats.Repository          { return seatRepo{s} }
func (s *Store) Tickets() tickets.Repository      { return ticketRepo{s} }
func (s *Store) Numberer() *Numberer              { return &Numberer{s} }
func (s *Store) Reasons() cancellation.Repository { return reasonRepo{s} }

// Fixture helpers

func (s *Store) AddEvent(e events.TicketedEvent) events.TicketedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.TicketingStatus == "" {
		e.TicketingStatus = events.TicketingStatusActive
	}
	s.state.events[e.ID] = e
	return e
}

func (s *Store) AddSector(sec seats.Sector) seats.Sector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sec.ID == uuid.Nil {
		sec.ID = uuid.New()
	}
	s.state.sectors[sec.ID] = sec
	return sec
}

func (s *Store) AddSeat(seat seats.Seat) seats.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	if seat.Status == "" {
		seat.Status = seats.SeatStatusAvailable
	}
	s.state.seats[seat.ID] = seat
	return seat
}

func (s *Store) AddReason(r cancellation.Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.reasons[r.Code] = r
}

func (s *Store) AddTicket(t tickets.Ticket) tickets.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.state.tickets[t.ID] = t
	return t
}

func (s *Store) AddTransaction(t tickets.Transaction) tickets.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.state.transactions[t.ID] = t
	return t
}

// Assertions

func (s *Store) Event(id uuid.UUID) events.TicketedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.events[id]
}

func (s *Store) Sector(id uuid.UUID) seats.Sector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.sectors[id]
}

func (s *Store) Seat(id uuid.UUID) seats.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.seats[id]
}

func (s *Store) Ticket(id uuid.UUID) tickets.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.tickets[id]
}

func (s *Store) Transaction(id uuid.UUID) tickets.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.transactions[id]
}

func (s *Store) Counter(eventID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.counters[eventID]
}

// EventTickets returns every ticket of eventID in progressive order
func (s *Store) EventTickets(eventID uuid.UUID) []tickets.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedTickets(s.state.tickets, func(t tickets.Ticket) bool { return t.TicketedEventID == eventID })
}
