package database

import (
	"errors"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation  = "23505"
	pgCheckViolation   = "23514"
	pgInvalidText      = "22P02"
	pgLockNotAvailable = "55P03"
	pgQueryCanceled    = "57014"
)

func IsUniqueViolation(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

func IsCheckViolation(err error) bool {
	return hasPgCode(err, pgCheckViolation)
}

func IsInvalidInput(err error) bool {
	return hasPgCode(err, pgInvalidText)
}

// IsLockTimeout reports a lock_timeout or statement_timeout expiry.
func IsLockTimeout(err error) bool {
	return hasPgCode(err, pgLockNotAvailable) || hasPgCode(err, pgQueryCanceled)
}

// ConstraintName returns the violated constraint, if the error carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// Classify gives a kind to PostgreSQL errors that reach a transaction
// boundary without one. A CHECK violation means a counter would leave
// [0, capacity], so it reads as exhausted inventory.
func Classify(err error) error {
	if err == nil || apperror.KindOf(err) != "" {
		return err
	}
	switch {
	case IsCheckViolation(err):
		return apperror.Wrap(apperror.KindInventoryExhausted, "capacity limit reached", err)
	case IsUniqueViolation(err):
		return apperror.Wrap(apperror.KindConflict, "record already exists", err)
	case IsLockTimeout(err):
		return apperror.Wrap(apperror.KindConflict, "inventory is busy, retry the request", err)
	case IsInvalidInput(err):
		return apperror.Wrap(apperror.KindValidation, "malformed value", err)
	}
	return err
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
