package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go"
)

type scriptedGateway struct {
	err   error
	delay time.Duration
	calls int
}

func (g *scriptedGateway) Name() string { return "scripted" }

func (g *scriptedGateway) Charge(ctx context.Context, _ decimal.Decimal, _ string, _ string) (string, error) {
	return g.respond(ctx, "pi_ok")
}

func (g *scriptedGateway) Refund(ctx context.Context, _ string, _ decimal.Decimal, _ string) (string, error) {
	return g.respond(ctx, "re_ok")
}

func (g *scriptedGateway) respond(ctx context.Context, ref string) (string, error) {
	g.calls++
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return ref, nil
}

var amount = decimal.RequireFromString("25.50")

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(2550), toMinorUnits(amount))
	assert.Equal(t, int64(1), toMinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(1000), toMinorUnits(decimal.NewFromInt(10)))
}

func TestMockGateway(t *testing.T) {
	gw := NewMockGateway()
	ctx := context.Background()

	ref, err := gw.Charge(ctx, amount, "pm_card_visa", "k1")
	require.NoError(t, err)
	again, err := gw.Charge(ctx, amount, "pm_card_visa", "k1")
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	_, err = gw.Charge(ctx, decimal.Zero, "pm_card_visa", "k2")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	refund, err := gw.Refund(ctx, ref, amount, "r1")
	require.NoError(t, err)
	replay, err := gw.Refund(ctx, ref, amount, "r1")
	require.NoError(t, err)
	assert.Equal(t, refund, replay)

	_, err = gw.Refund(ctx, "", amount, "r2")
	assert.ErrorIs(t, err, ErrDeclined)

	gw.SetFailRefunds(ErrUnavailable)
	_, err = gw.Refund(ctx, ref, amount, "r3")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 4, gw.Refunds())
}

func TestGuardedGatewayTripsOnOutages(t *testing.T) {
	inner := &scriptedGateway{err: ErrUnavailable}
	gw := NewGuardedGateway(inner, config.PaymentConfig{
		BreakerMaxFailures: 2,
		BreakerOpenTimeout: time.Hour,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := gw.Refund(ctx, "pi_1", amount, "r")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, 2, inner.calls)

	// open: the provider is no longer called
	_, err := gw.Refund(ctx, "pi_1", amount, "r")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedGatewayIgnoresDeclines(t *testing.T) {
	inner := &scriptedGateway{err: ErrDeclined}
	gw := NewGuardedGateway(inner, config.PaymentConfig{BreakerMaxFailures: 1, BreakerOpenTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		_, err := gw.Charge(context.Background(), amount, "pm", "c")
		assert.ErrorIs(t, err, ErrDeclined)
	}
	assert.Equal(t, 3, inner.calls)

	inner.err = nil
	ref, err := gw.Charge(context.Background(), amount, "pm", "c")
	require.NoError(t, err)
	assert.Equal(t, "pi_ok", ref)
}

func TestGuardedGatewayTimeout(t *testing.T) {
	inner := &scriptedGateway{delay: time.Second}
	gw := NewGuardedGateway(inner, config.PaymentConfig{CallTimeout: 20 * time.Millisecond})

	_, err := gw.Refund(context.Background(), "pi_1", amount, "r")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(config.PaymentConfig{})
	require.NoError(t, err)
	assert.Equal(t, "mock", gw.Name())

	_, err = NewGateway(config.PaymentConfig{Provider: "stripe"})
	assert.Error(t, err)

	_, err = NewGateway(config.PaymentConfig{Provider: "paypal"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestClassifyStripeError(t *testing.T) {
	card := classifyStripeError(&stripe.Error{Type: stripe.ErrorTypeCard, Msg: "insufficient funds"})
	assert.ErrorIs(t, card, ErrDeclined)

	api := classifyStripeError(&stripe.Error{Type: stripe.ErrorTypeAPI, Msg: "internal"})
	assert.ErrorIs(t, api, ErrUnavailable)

	network := classifyStripeError(errors.New("dial tcp: timeout"))
	assert.ErrorIs(t, network, ErrUnavailable)
}
