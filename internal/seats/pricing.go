package seats

import (
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

// TicketType is the fiscal ticket type code printed on every ticket
type TicketType string

const (
	TicketTypeIntero  TicketType = "INT"
	TicketTypeRidotto TicketType = "RID"
	TicketTypeOmaggio TicketType = "OMA"
)

func (t TicketType) IsValid() bool {
	switch t {
	case TicketTypeIntero, TicketTypeRidotto, TicketTypeOmaggio:
		return true
	}
	return false
}

func (t TicketType) String() string {
	return string(t)
}

// Price splits a ticket amount into face value and booking fee
type Price struct {
	Base       decimal.Decimal `json:"base"`
	Prevendita decimal.Decimal `json:"prevendita"`
}

func (p Price) Gross() decimal.Decimal {
	return p.Base.Add(p.Prevendita)
}

// PriceFor returns the unit price of ticketType in sector. Complimentary
// tickets carry neither face value nor booking fee.
func PriceFor(sector *Sector, ticketType TicketType) (Price, error) {
	switch ticketType {
	case TicketTypeIntero:
		return Price{Base: sector.PriceIntero, Prevendita: sector.Prevendita}, nil
	case TicketTypeRidotto:
		if !sector.PriceRidotto.Valid || !sector.PriceRidotto.Decimal.IsPositive() {
			return Price{}, apperror.Validation("sector %s has no reduced price", sector.SectorCode)
		}
		return Price{Base: sector.PriceRidotto.Decimal, Prevendita: sector.Prevendita}, nil
	case TicketTypeOmaggio:
		return Price{Base: decimal.Zero, Prevendita: decimal.Zero}, nil
	default:
		return Price{}, apperror.Validation("unknown ticket type %q", ticketType)
	}
}
