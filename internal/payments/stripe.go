package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/paymentintent"
	"github.com/stripe/stripe-go/refund"
)

type stripeGateway struct {
	currency string
}

// NewStripeGateway configures the global stripe key. Only one Stripe account
// per process is supported.
func NewStripeGateway(secretKey, currency string) Gateway {
	stripe.Key = secretKey
	if currency == "" {
		currency = string(stripe.CurrencyEUR)
	}
	return &stripeGateway{currency: strings.ToLower(currency)}
}

func (g *stripeGateway) Name() string {
	return "stripe"
}

// Charge confirms a PaymentIntent with the supplied payment method token and
// returns the intent id as the payment reference.
func (g *stripeGateway) Charge(ctx context.Context, amount decimal.Decimal, paymentToken string, idempotencyKey string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(amount)),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(paymentToken),
		Confirm:       stripe.Bool(true),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", classifyStripeError(err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, pi.ID, pi.Status)
	}
	return pi.ID, nil
}

func (g *stripeGateway) Refund(ctx context.Context, paymentReference string, amount decimal.Decimal, idempotencyKey string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}

	params := &stripe.RefundParams{
		Amount: stripe.Int64(toMinorUnits(amount)),
	}
	if strings.HasPrefix(paymentReference, "ch_") {
		params.Charge = stripe.String(paymentReference)
	} else {
		params.PaymentIntent = stripe.String(paymentReference)
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	r, err := refund.New(params)
	if err != nil {
		return "", classifyStripeError(err)
	}
	if r.Status == stripe.RefundStatusFailed || r.Status == stripe.RefundStatusCanceled {
		return "", fmt.Errorf("%w: refund %s is %s", ErrDeclined, r.ID, r.Status)
	}
	return r.ID, nil
}

func classifyStripeError(err error) error {
	stripeErr, ok := err.(*stripe.Error)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch stripeErr.Type {
	case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
		return fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, stripeErr.Msg)
	}
}
