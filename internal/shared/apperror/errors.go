package apperror

import (
	"errors"
	"fmt"
)

// Kind is the stable classification of a failure, exposed to API clients.
type Kind string

const (
	KindValidation            Kind = "VALIDATION_ERROR"
	KindInventoryExhausted    Kind = "INVENTORY_EXHAUSTED"
	KindConflict              Kind = "CONFLICT"
	KindNumberingFailure      Kind = "NUMBERING_FAILURE"
	KindExternalRefundFailure Kind = "EXTERNAL_REFUND_FAILURE"
	KindNotFound              Kind = "NOT_FOUND"
	KindDeviceNotReady        Kind = "FISCAL_DEVICE_NOT_READY"
	KindPaymentFailure        Kind = "PAYMENT_FAILURE"
)

// Error carries a Kind plus a human readable cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match on Kind, so errors.Is(err, ErrConflict) works for any conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks
var (
	ErrValidation            = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrInventoryExhausted    = &Error{Kind: KindInventoryExhausted, Message: "inventory exhausted"}
	ErrConflict              = &Error{Kind: KindConflict, Message: "conflict"}
	ErrNumberingFailure      = &Error{Kind: KindNumberingFailure, Message: "numbering failure"}
	ErrExternalRefundFailure = &Error{Kind: KindExternalRefundFailure, Message: "external refund failure"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDeviceNotReady        = &Error{Kind: KindDeviceNotReady, Message: "fiscal device not ready"}
	ErrPaymentFailure        = &Error{Kind: KindPaymentFailure, Message: "payment failure"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func InventoryExhausted(format string, args ...interface{}) *Error {
	return New(KindInventoryExhausted, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func NumberingFailure(message string, err error) *Error {
	return Wrap(KindNumberingFailure, message, err)
}

func ExternalRefundFailure(message string, err error) *Error {
	return Wrap(KindExternalRefundFailure, message, err)
}

func PaymentFailure(message string, err error) *Error {
	return Wrap(KindPaymentFailure, message, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// MessageOf returns the human readable message of an *Error, falling back to err.Error().
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
