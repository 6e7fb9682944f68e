package tickets

import (
	"strings"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ticket is one fiscal ticket. SectorCode, TicketTypeCode, ProgressiveNumber,
// the emission strings, GrossAmount and FiscalSealCode never change after
// insert.
type Ticket struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketedEventID uuid.UUID  `json:"ticketed_event_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_event_progressive"`
	SectorID        uuid.UUID  `json:"sector_id" gorm:"type:uuid;not null;index"`
	SeatID          *uuid.UUID `json:"seat_id,omitempty" gorm:"type:uuid;index"`
	SeatRow         *string    `json:"seat_row,omitempty" gorm:"size:8"`
	SeatNumber      *string    `json:"seat_number,omitempty" gorm:"size:8"`

	// Fiscal fields
	SectorCode        string           `json:"sector_code" gorm:"not null;size:16"`
	TicketTypeCode    seats.TicketType `json:"ticket_type_code" gorm:"type:varchar(3);not null;check:ticket_type_code IN ('INT','RID','OMA')"`
	ProgressiveNumber int64            `json:"progressive_number" gorm:"not null;uniqueIndex:idx_event_progressive"`
	EmissionDateStr   string           `json:"emission_date_str" gorm:"type:char(8);not null"`
	EmissionTimeStr   string           `json:"emission_time_str" gorm:"type:char(4);not null"`
	FiscalSealCode    string           `json:"fiscal_seal_code" gorm:"not null;size:64"`
	GrossAmount       decimal.Decimal  `json:"gross_amount" gorm:"type:numeric(12,2);not null"`
	Prevendita        decimal.Decimal  `json:"prevendita" gorm:"type:numeric(12,2);not null;default:0"`

	ParticipantFirstName *string `json:"participant_first_name,omitempty" gorm:"size:100"`
	ParticipantLastName  *string `json:"participant_last_name,omitempty" gorm:"size:100"`

	Status        Status     `json:"status" gorm:"type:varchar(20);not null;default:'valid';index;check:status IN ('valid','used','cancelled')"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty" gorm:"type:uuid;index"`
	IssuedBy      *string    `json:"issued_by,omitempty" gorm:"size:64"`
	UsedAt        *time.Time `json:"used_at,omitempty"`

	// Cancellation and refund
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	ReasonCode      *string             `json:"reason_code,omitempty" gorm:"size:16"`
	RefundRequested bool                `json:"refund_requested" gorm:"not null;default:false"`
	RefundAttempts  int                 `json:"refund_attempts" gorm:"not null;default:0"`
	LastRefundError *string             `json:"last_refund_error,omitempty"`
	RefundReference *string             `json:"refund_reference,omitempty" gorm:"size:255"`
	RefundedAt      *time.Time          `json:"refunded_at,omitempty"`
	RefundAmount    decimal.NullDecimal `json:"refund_amount" gorm:"type:numeric(12,2)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// IsRefundPending reports a cancelled ticket whose requested refund has not
// gone through yet.
func (t *Ticket) IsRefundPending() bool {
	return t.Status == StatusCancelled && t.RefundRequested && t.RefundedAt == nil
}

// Transaction is the ledger row for one sale
type Transaction struct {
	ID               uuid.UUID         `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketedEventID  uuid.UUID         `json:"ticketed_event_id" gorm:"type:uuid;not null;index"`
	TransactionCode  string            `json:"transaction_code" gorm:"not null;uniqueIndex;size:32"`
	TicketsCount     int               `json:"tickets_count" gorm:"not null;check:tickets_count > 0"`
	TotalAmount      decimal.Decimal   `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	RefundedAmount   decimal.Decimal   `json:"refunded_amount" gorm:"type:numeric(12,2);not null;default:0"`
	PaymentMethod    PaymentMethod     `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentReference *string           `json:"payment_reference,omitempty" gorm:"size:255"`
	CustomerEmail    *string           `json:"customer_email,omitempty" gorm:"size:255"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);not null;default:'completed';check:status IN ('pending','completed','failed','refunded')"`
	CreatedAt        time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// IssueRequest is the service-level input of Issue
type IssueRequest struct {
	TicketedEventID      uuid.UUID
	SectorID             uuid.UUID
	SeatIDs              []uuid.UUID
	TicketType           seats.TicketType
	ParticipantFirstName string
	ParticipantLastName  string
	Quantity             int
	PaymentMethod        PaymentMethod
	PaymentReference     string
	PaymentToken         string
	CustomerEmail        string
	ActorID              string
}

// IssueResult is everything one Issue call committed
type IssueResult struct {
	Tickets     []Ticket
	Transaction *Transaction
}

type CancelRequest struct {
	TicketID   uuid.UUID
	ReasonCode string
	Refund     bool
	ActorID    string
}

// SealVerification is the audit view of a stored seal
type SealVerification struct {
	TicketID          string `json:"ticket_id"`
	ProgressiveNumber int64  `json:"progressive_number"`
	StoredSeal        string `json:"stored_seal"`
	ComputedSeal      string `json:"computed_seal"`
	Valid             bool   `json:"valid"`
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
