package tickets

import (
	"strings"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
)

type Status string

const (
	StatusValid     Status = "valid"
	StatusUsed      Status = "used"
	StatusCancelled Status = "cancelled"
)

// transitions lists every legal move. Used and cancelled are terminal.
var transitions = map[Status][]Status{
	StatusValid:     {StatusUsed, StatusCancelled},
	StatusUsed:      nil,
	StatusCancelled: nil,
}

// ParseStatus accepts "active" as another spelling of valid.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "valid", "active":
		return StatusValid, nil
	case "used":
		return StatusUsed, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	return "", apperror.Validation("unknown ticket status %q", s)
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Live tickets hold their seat.
func (s Status) IsLive() bool {
	return s == StatusValid || s == StatusUsed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCard
}
