package seats

import (
	"time"

	"github.com/shopspring/decimal"
)

type SectorResponse struct {
	ID              string           `json:"id"`
	TicketedEventID string           `json:"ticketed_event_id"`
	Name            string           `json:"name"`
	SectorCode      string           `json:"sector_code"`
	Capacity        int              `json:"capacity"`
	AvailableSeats  int              `json:"available_seats"`
	PriceIntero     decimal.Decimal  `json:"price_intero"`
	PriceRidotto    *decimal.Decimal `json:"price_ridotto,omitempty"`
	Prevendita      decimal.Decimal  `json:"prevendita"`
	IsNumbered      bool             `json:"is_numbered"`
	SalesSuspended  bool             `json:"sales_suspended"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type SeatResponse struct {
	ID           string     `json:"id"`
	SectorID     string     `json:"sector_id"`
	Row          string     `json:"row"`
	SeatNumber   string     `json:"seat_number"`
	Position     int        `json:"position"`
	Status       SeatStatus `json:"status"`
	IsAccessible bool       `json:"is_accessible"`
}

func (s *Sector) ToResponse() SectorResponse {
	resp := SectorResponse{
		ID:              s.ID.String(),
		TicketedEventID: s.TicketedEventID.String(),
		Name:            s.Name,
		SectorCode:      s.SectorCode,
		Capacity:        s.Capacity,
		AvailableSeats:  s.AvailableSeats,
		PriceIntero:     s.PriceIntero,
		Prevendita:      s.Prevendita,
		IsNumbered:      s.IsNumbered,
		SalesSuspended:  s.SalesSuspended,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.PriceRidotto.Valid {
		ridotto := s.PriceRidotto.Decimal
		resp.PriceRidotto = &ridotto
	}
	return resp
}

func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{
		ID:           s.ID.String(),
		SectorID:     s.SectorID.String(),
		Row:          s.Row,
		SeatNumber:   s.SeatNumber,
		Position:     s.Position,
		Status:       s.Status,
		IsAccessible: s.IsAccessible,
	}
}
