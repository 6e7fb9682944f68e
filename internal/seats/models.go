package seats

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusSold      SeatStatus = "sold"
	SeatStatusBlocked   SeatStatus = "blocked"
)

func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusSold, SeatStatusBlocked:
		return true
	}
	return false
}

// Sector is a priced inventory pool of one ticketed event, either numbered
// (backed by Seat rows) or general admission (backed by AvailableSeats).
type Sector struct {
	ID              uuid.UUID           `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketedEventID uuid.UUID           `json:"ticketed_event_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_event_sector_code"`
	Name            string              `json:"name" gorm:"not null;size:255"`
	SectorCode      string              `json:"sector_code" gorm:"not null;size:16;uniqueIndex:idx_event_sector_code"`
	Capacity        int                 `json:"capacity" gorm:"not null;check:capacity > 0"`
	AvailableSeats  int                 `json:"available_seats" gorm:"not null;check:available_seats >= 0"`
	PriceIntero     decimal.Decimal     `json:"price_intero" gorm:"type:numeric(12,2);not null"`
	PriceRidotto    decimal.NullDecimal `json:"price_ridotto" gorm:"type:numeric(12,2)"`
	Prevendita      decimal.Decimal     `json:"prevendita" gorm:"type:numeric(12,2);not null;default:0"`
	IsNumbered      bool                `json:"is_numbered" gorm:"not null;default:false"`
	SalesSuspended  bool                `json:"sales_suspended" gorm:"not null;default:false"`
	CreatedAt       time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Sector) TableName() string {
	return "sectors"
}

// Seat defines the structure for individual seats of a numbered sector
type Seat struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SectorID     uuid.UUID  `json:"sector_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_sector_seat"`
	Row          string     `json:"row" gorm:"not null;size:8;uniqueIndex:idx_sector_seat"`
	SeatNumber   string     `json:"seat_number" gorm:"not null;size:8;uniqueIndex:idx_sector_seat"`
	Position     int        `json:"position" gorm:"not null;default:0"`
	Status       SeatStatus `json:"status" gorm:"type:varchar(20);not null;default:'available';check:status IN ('available','reserved','sold','blocked')"`
	IsAccessible bool       `json:"is_accessible" gorm:"not null;default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) Label() string {
	return s.Row + s.SeatNumber
}

// Release records that the inventory held by one reservation went back to its
// sector. The primary key makes a second release of the same reservation a no-op.
type Release struct {
	ReservationID uuid.UUID  `json:"reservation_id" gorm:"type:uuid;primaryKey"`
	SectorID      uuid.UUID  `json:"sector_id" gorm:"type:uuid;not null;index"`
	SeatID        *uuid.UUID `json:"seat_id,omitempty" gorm:"type:uuid"`
	ReleasedAt    time.Time  `json:"released_at" gorm:"not null"`
}

func (Release) TableName() string {
	return "inventory_releases"
}

// Reservation is one unit of inventory taken by Reserve
type Reservation struct {
	SectorID   uuid.UUID
	SectorCode string
	SeatID     *uuid.UUID
	Row        string
	SeatNumber string
}

// AvailabilitySnapshot is the read model served to floor plans and box offices
type AvailabilitySnapshot struct {
	SectorID        string             `json:"sector_id"`
	TicketedEventID string             `json:"ticketed_event_id"`
	SectorCode      string             `json:"sector_code"`
	Name            string             `json:"name"`
	IsNumbered      bool               `json:"is_numbered"`
	Capacity        int                `json:"capacity"`
	AvailableSeats  int                `json:"available_seats"`
	SalesSuspended  bool               `json:"sales_suspended"`
	SeatCounts      map[SeatStatus]int `json:"seat_counts,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
