package fiscal

import (
	"time"

	"github.com/google/uuid"
)

// Counter is the per-event progressive number sequence
type Counter struct {
	TicketedEventID uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastNumber      int64     `gorm:"not null;default:0;check:last_number >= 0"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Counter) TableName() string {
	return "fiscal_counters"
}
