package seats

import (
	"testing"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFor(t *testing.T) {
	sector := &Sector{
		SectorCode:   "PL",
		PriceIntero:  decimal.RequireFromString("45.00"),
		PriceRidotto: decimal.NewNullDecimal(decimal.RequireFromString("35.00")),
		Prevendita:   decimal.RequireFromString("4.50"),
	}

	t.Run("intero", func(t *testing.T) {
		price, err := PriceFor(sector, TicketTypeIntero)
		require.NoError(t, err)
		assert.True(t, price.Gross().Equal(decimal.RequireFromString("49.50")))
	})

	t.Run("ridotto", func(t *testing.T) {
		price, err := PriceFor(sector, TicketTypeRidotto)
		require.NoError(t, err)
		assert.True(t, price.Base.Equal(decimal.RequireFromString("35.00")))
		assert.True(t, price.Gross().Equal(decimal.RequireFromString("39.50")))
	})

	t.Run("omaggio is free", func(t *testing.T) {
		price, err := PriceFor(sector, TicketTypeOmaggio)
		require.NoError(t, err)
		assert.True(t, price.Gross().IsZero())
	})

	t.Run("ridotto without reduced price", func(t *testing.T) {
		_, err := PriceFor(&Sector{SectorCode: "GA", PriceIntero: decimal.NewFromInt(10)}, TicketTypeRidotto)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := PriceFor(sector, TicketType("VIP"))
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestTicketTypeIsValid(t *testing.T) {
	for _, tt := range []TicketType{TicketTypeIntero, TicketTypeRidotto, TicketTypeOmaggio} {
		assert.True(t, tt.IsValid(), tt.String())
	}
	assert.False(t, TicketType("int").IsValid())
	assert.False(t, TicketType("").IsValid())
}
