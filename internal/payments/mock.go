package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockGateway settles everything locally. Replays of an idempotency key
// return the first result.
type MockGateway struct {
	mu          sync.Mutex
	FailCharges error
	FailRefunds error
	charges     map[string]string
	refunds     map[string]string
	RefundCalls int
	ChargeCalls int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		charges: make(map[string]string),
		refunds: make(map[string]string),
	}
}

func (m *MockGateway) Name() string {
	return "mock"
}

func (m *MockGateway) Charge(_ context.Context, amount decimal.Decimal, _ string, idempotencyKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChargeCalls++
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if m.FailCharges != nil {
		return "", m.FailCharges
	}
	if ref, ok := m.charges[idempotencyKey]; ok && idempotencyKey != "" {
		return ref, nil
	}
	ref := "mock_pi_" + uuid.NewString()
	m.charges[idempotencyKey] = ref
	return ref, nil
}

func (m *MockGateway) Refund(_ context.Context, paymentReference string, amount decimal.Decimal, idempotencyKey string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RefundCalls++
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if m.FailRefunds != nil {
		return "", m.FailRefunds
	}
	if paymentReference == "" {
		return "", fmt.Errorf("%w: missing payment reference", ErrDeclined)
	}
	if ref, ok := m.refunds[idempotencyKey]; ok && idempotencyKey != "" {
		return ref, nil
	}
	ref := "mock_re_" + uuid.NewString()
	m.refunds[idempotencyKey] = ref
	return ref, nil
}

func (m *MockGateway) SetFailRefunds(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailRefunds = err
}

func (m *MockGateway) Refunds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RefundCalls
}
