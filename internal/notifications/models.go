package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LifecycleEventType names a ticket state change published to Kafka
type LifecycleEventType string

const (
	EventTicketsIssued      LifecycleEventType = "ticket.issued"
	EventTicketUsed         LifecycleEventType = "ticket.used"
	EventTicketCancelled    LifecycleEventType = "ticket.cancelled"
	EventTicketRefunded     LifecycleEventType = "ticket.refunded"
	EventTicketRefundFailed LifecycleEventType = "ticket.refund_failed"
)

// LifecycleEvent is the message body. One issued event covers the whole batch.
type LifecycleEvent struct {
	ID              uuid.UUID          `json:"id"`
	Type            LifecycleEventType `json:"type"`
	TicketedEventID uuid.UUID          `json:"ticketed_event_id"`
	TicketIDs       []uuid.UUID        `json:"ticket_ids"`
	SectorIDs       []uuid.UUID        `json:"sector_ids,omitempty"`
	TransactionID   *uuid.UUID         `json:"transaction_id,omitempty"`
	ReasonCode      string             `json:"reason_code,omitempty"`
	Amount          *decimal.Decimal   `json:"amount,omitempty"`
	Error           string             `json:"error,omitempty"`
	ActorID         string             `json:"actor_id,omitempty"`
	OccurredAt      time.Time          `json:"occurred_at"`
}

// LifecycleEventBuilder helps construct lifecycle events
type LifecycleEventBuilder struct {
	event *LifecycleEvent
}

func NewLifecycleEvent(eventType LifecycleEventType, ticketedEventID uuid.UUID) *LifecycleEventBuilder {
	return &LifecycleEventBuilder{
		event: &LifecycleEvent{
			ID:              uuid.New(),
			Type:            eventType,
			TicketedEventID: ticketedEventID,
			OccurredAt:      time.Now().UTC(),
		},
	}
}

func (b *LifecycleEventBuilder) WithTickets(ids ...uuid.UUID) *LifecycleEventBuilder {
	b.event.TicketIDs = append(b.event.TicketIDs, ids...)
	return b
}

func (b *LifecycleEventBuilder) WithSectors(ids ...uuid.UUID) *LifecycleEventBuilder {
	b.event.SectorIDs = append(b.event.SectorIDs, ids...)
	return b
}

func (b *LifecycleEventBuilder) WithTransaction(id *uuid.UUID) *LifecycleEventBuilder {
	b.event.TransactionID = id
	return b
}

func (b *LifecycleEventBuilder) WithReason(code string) *LifecycleEventBuilder {
	b.event.ReasonCode = code
	return b
}

func (b *LifecycleEventBuilder) WithAmount(amount decimal.Decimal) *LifecycleEventBuilder {
	b.event.Amount = &amount
	return b
}

func (b *LifecycleEventBuilder) WithError(err error) *LifecycleEventBuilder {
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

func (b *LifecycleEventBuilder) WithActor(actorID string) *LifecycleEventBuilder {
	b.event.ActorID = actorID
	return b
}

func (b *LifecycleEventBuilder) At(t time.Time) *LifecycleEventBuilder {
	b.event.OccurredAt = t.UTC()
	return b
}

func (b *LifecycleEventBuilder) Build() *LifecycleEvent {
	return b.event
}

// PartitionKey keeps every event of one ticketed event on one partition, so
// consumers see them in order.
func (e *LifecycleEvent) PartitionKey() string {
	return e.TicketedEventID.String()
}

func (e *LifecycleEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
