package cancellation

import (
	"time"
)

// Reason is one entry of the closed causale vocabulary required to cancel a
// fiscal ticket.
type Reason struct {
	Code        string    `gorm:"primaryKey;size:16" json:"code"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Reason
func (Reason) TableName() string {
	return "cancellation_reasons"
}

// DefaultReasons seeds the vocabulary on a fresh database
func DefaultReasons() []Reason {
	return []Reason{
		{Code: "5.1", Name: "Evento annullato", Description: "The event will not take place", Active: true, SortOrder: 1},
		{Code: "5.2", Name: "Richiesta del cliente", Description: "Cancelled at the customer's request", Active: true, SortOrder: 2},
		{Code: "5.3", Name: "Errore di emissione", Description: "Ticket issued with wrong data", Active: true, SortOrder: 3},
		{Code: "5.4", Name: "Biglietto duplicato", Description: "Duplicate issuance", Active: true, SortOrder: 4},
		{Code: "5.5", Name: "Mancato pagamento", Description: "Payment not received", Active: true, SortOrder: 5},
		{Code: "5.6", Name: "Variazione evento", Description: "Date, venue or line-up changed", Active: true, SortOrder: 6},
	}
}
