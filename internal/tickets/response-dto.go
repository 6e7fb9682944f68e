package tickets

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketResponse struct {
	ID                   string           `json:"id"`
	TicketedEventID      string           `json:"ticketed_event_id"`
	SectorID             string           `json:"sector_id"`
	SeatID               *string          `json:"seat_id,omitempty"`
	SeatRow              *string          `json:"seat_row,omitempty"`
	SeatNumber           *string          `json:"seat_number,omitempty"`
	SectorCode           string           `json:"sector_code"`
	TicketTypeCode       string           `json:"ticket_type_code"`
	ProgressiveNumber    int64            `json:"progressive_number"`
	EmissionDateStr      string           `json:"emission_date_str"`
	EmissionTimeStr      string           `json:"emission_time_str"`
	FiscalSealCode       string           `json:"fiscal_seal_code"`
	GrossAmount          decimal.Decimal  `json:"gross_amount"`
	Prevendita           decimal.Decimal  `json:"prevendita"`
	ParticipantFirstName *string          `json:"participant_first_name,omitempty"`
	ParticipantLastName  *string          `json:"participant_last_name,omitempty"`
	Status               Status           `json:"status"`
	TransactionID        *string          `json:"transaction_id,omitempty"`
	UsedAt               *time.Time       `json:"used_at,omitempty"`
	CancelledAt          *time.Time       `json:"cancelled_at,omitempty"`
	ReasonCode           *string          `json:"reason_code,omitempty"`
	RefundRequested      bool             `json:"refund_requested"`
	RefundAttempts       int              `json:"refund_attempts,omitempty"`
	LastRefundError      *string          `json:"last_refund_error,omitempty"`
	RefundedAt           *time.Time       `json:"refunded_at,omitempty"`
	RefundAmount         *decimal.Decimal `json:"refund_amount,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}

type TransactionResponse struct {
	ID              string            `json:"id"`
	TransactionCode string            `json:"transaction_code"`
	TicketsCount    int               `json:"tickets_count"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	RefundedAmount  decimal.Decimal   `json:"refunded_amount"`
	PaymentMethod   PaymentMethod     `json:"payment_method"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
}

type IssueTicketsResponse struct {
	Tickets     []TicketResponse     `json:"tickets"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

func (t *Ticket) ToResponse() TicketResponse {
	resp := TicketResponse{
		ID:                   t.ID.String(),
		TicketedEventID:      t.TicketedEventID.String(),
		SectorID:             t.SectorID.String(),
		SeatRow:              t.SeatRow,
		SeatNumber:           t.SeatNumber,
		SectorCode:           t.SectorCode,
		TicketTypeCode:       t.TicketTypeCode.String(),
		ProgressiveNumber:    t.ProgressiveNumber,
		EmissionDateStr:      t.EmissionDateStr,
		EmissionTimeStr:      t.EmissionTimeStr,
		FiscalSealCode:       t.FiscalSealCode,
		GrossAmount:          t.GrossAmount,
		Prevendita:           t.Prevendita,
		ParticipantFirstName: t.ParticipantFirstName,
		ParticipantLastName:  t.ParticipantLastName,
		Status:               t.Status,
		UsedAt:               t.UsedAt,
		CancelledAt:          t.CancelledAt,
		ReasonCode:           t.ReasonCode,
		RefundRequested:      t.RefundRequested,
		RefundAttempts:       t.RefundAttempts,
		LastRefundError:      t.LastRefundError,
		RefundedAt:           t.RefundedAt,
		CreatedAt:            t.CreatedAt,
	}
	if t.SeatID != nil {
		id := t.SeatID.String()
		resp.SeatID = &id
	}
	if t.TransactionID != nil {
		id := t.TransactionID.String()
		resp.TransactionID = &id
	}
	if t.RefundAmount.Valid {
		amount := t.RefundAmount.Decimal
		resp.RefundAmount = &amount
	}
	return resp
}

func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:              t.ID.String(),
		TransactionCode: t.TransactionCode,
		TicketsCount:    t.TicketsCount,
		TotalAmount:     t.TotalAmount,
		RefundedAmount:  t.RefundedAmount,
		PaymentMethod:   t.PaymentMethod,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
	}
}

func toTicketResponses(tickets []Ticket) []TicketResponse {
	out := make([]TicketResponse, len(tickets))
	for i := range tickets {
		out[i] = tickets[i].ToResponse()
	}
	return out
}
