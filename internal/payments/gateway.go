package payments

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Gateway is the payment collaborator contract: take money for an issuance
// and give it back on cancellation.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, paymentToken string, idempotencyKey string) (string, error)
	Refund(ctx context.Context, paymentReference string, amount decimal.Decimal, idempotencyKey string) (string, error)
	Name() string
}

var (
	ErrDeclined        = errors.New("payment declined")
	ErrUnavailable     = errors.New("payment gateway unavailable")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrUnknownProvider = errors.New("unknown payment provider")
)

// toMinorUnits converts euros to cents
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
