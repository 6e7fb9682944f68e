package events

import (
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketedEvent is the sellable side of an event: capacity, sale window and
// the aggregate counters kept in step with issuance and cancellation.
type TicketedEvent struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BaseEventID        uuid.UUID       `json:"base_event_id" gorm:"type:uuid;not null;index"`
	Name               string          `json:"name" gorm:"not null;size:255"`
	TotalCapacity      int             `json:"total_capacity" gorm:"not null;check:total_capacity > 0"`
	TicketsSold        int             `json:"tickets_sold" gorm:"not null;default:0;check:tickets_sold >= 0"`
	Revenue            decimal.Decimal `json:"revenue" gorm:"type:numeric(12,2);not null;default:0"`
	TicketingStatus    TicketingStatus `json:"ticketing_status" gorm:"type:varchar(20);not null;default:'active'"`
	SaleStartDate      *time.Time      `json:"sale_start_date"`
	SaleEndDate        *time.Time      `json:"sale_end_date"`
	MaxTicketsPerUser  int             `json:"max_tickets_per_user" gorm:"not null;default:10;check:max_tickets_per_user > 0"`
	RequiresNominative bool            `json:"requires_nominative" gorm:"not null;default:false"`
	AllowsChangeName   bool            `json:"allows_change_name" gorm:"not null;default:false"`
	AllowsResale       bool            `json:"allows_resale" gorm:"not null;default:false"`
	CreatedAt          time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (TicketedEvent) TableName() string {
	return "ticketed_events"
}

// CheckOnSale rejects issuance when ticketing is not active or now falls
// outside the sale window. Open bounds are unrestricted.
func (e *TicketedEvent) CheckOnSale(now time.Time) error {
	if e.TicketingStatus != TicketingStatusActive {
		return apperror.Validation("ticketing is %s for this event", e.TicketingStatus)
	}
	if e.SaleStartDate != nil && now.Before(*e.SaleStartDate) {
		return apperror.Validation("sales open at %s", e.SaleStartDate.Format(time.RFC3339))
	}
	if e.SaleEndDate != nil && now.After(*e.SaleEndDate) {
		return apperror.Validation("sales closed at %s", e.SaleEndDate.Format(time.RFC3339))
	}
	return nil
}

func (e *TicketedEvent) RemainingCapacity() int {
	if e.TicketsSold >= e.TotalCapacity {
		return 0
	}
	return e.TotalCapacity - e.TicketsSold
}

type TicketedEventResponse struct {
	ID                 string          `json:"id"`
	BaseEventID        string          `json:"base_event_id"`
	Name               string          `json:"name"`
	TotalCapacity      int             `json:"total_capacity"`
	TicketsSold        int             `json:"tickets_sold"`
	RemainingCapacity  int             `json:"remaining_capacity"`
	Revenue            decimal.Decimal `json:"revenue"`
	TicketingStatus    TicketingStatus `json:"ticketing_status"`
	SaleStartDate      *time.Time      `json:"sale_start_date,omitempty"`
	SaleEndDate        *time.Time      `json:"sale_end_date,omitempty"`
	MaxTicketsPerUser  int             `json:"max_tickets_per_user"`
	RequiresNominative bool            `json:"requires_nominative"`
	AllowsChangeName   bool            `json:"allows_change_name"`
	AllowsResale       bool            `json:"allows_resale"`
}

func (e *TicketedEvent) ToResponse() TicketedEventResponse {
	return TicketedEventResponse{
		ID:                 e.ID.String(),
		BaseEventID:        e.BaseEventID.String(),
		Name:               e.Name,
		TotalCapacity:      e.TotalCapacity,
		TicketsSold:        e.TicketsSold,
		RemainingCapacity:  e.RemainingCapacity(),
		Revenue:            e.Revenue,
		TicketingStatus:    e.TicketingStatus,
		SaleStartDate:      e.SaleStartDate,
		SaleEndDate:        e.SaleEndDate,
		MaxTicketsPerUser:  e.MaxTicketsPerUser,
		RequiresNominative: e.RequiresNominative,
		AllowsChangeName:   e.AllowsChangeName,
		AllowsResale:       e.AllowsResale,
	}
}

type UpdateTicketingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended closed"`
}
