package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// guardedGateway bounds every call with a timeout and trips a circuit
// breaker after consecutive gateway failures. Declines do not count as
// failures.
type guardedGateway struct {
	inner   Gateway
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewGuardedGateway(inner Gateway, cfg config.PaymentConfig) Gateway {
	maxFailures := uint32(cfg.BreakerMaxFailures)
	if maxFailures == 0 {
		maxFailures = 5
	}
	probes := uint32(cfg.BreakerHalfOpenProbes)
	if probes == 0 {
		probes = 1
	}

	settings := gobreaker.Settings{
		Name:        "payments-" + inner.Name(),
		MaxRequests: probes,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDeclined) || errors.Is(err, ErrInvalidAmount)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.GetDefault().Warn("⚡ Payment circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &guardedGateway{
		inner:   inner,
		timeout: cfg.CallTimeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *guardedGateway) Name() string {
	return g.inner.Name()
}

func (g *guardedGateway) Charge(ctx context.Context, amount decimal.Decimal, paymentToken string, idempotencyKey string) (string, error) {
	return g.call(ctx, func(ctx context.Context) (string, error) {
		return g.inner.Charge(ctx, amount, paymentToken, idempotencyKey)
	})
}

func (g *guardedGateway) Refund(ctx context.Context, paymentReference string, amount decimal.Decimal, idempotencyKey string) (string, error) {
	return g.call(ctx, func(ctx context.Context) (string, error) {
		return g.inner.Refund(ctx, paymentReference, amount, idempotencyKey)
	})
}

func (g *guardedGateway) call(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		ref, err := fn(ctx)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return ref, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return result.(string), nil
}

// NewGateway builds the configured provider wrapped with the breaker
func NewGateway(cfg config.PaymentConfig) (Gateway, error) {
	var inner Gateway
	switch cfg.Provider {
	case "", "mock":
		inner = NewMockGateway()
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("stripe provider requires STRIPE_SECRET_KEY")
		}
		inner = NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	return NewGuardedGateway(inner, cfg), nil
}
