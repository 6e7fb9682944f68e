package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgError(code string) error {
	return fmt.Errorf("failed to update sector: %w", &pgconn.PgError{Code: code, ConstraintName: "chk_sectors_available"})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{"check violation", pgError(pgCheckViolation), apperror.KindInventoryExhausted},
		{"unique violation", pgError(pgUniqueViolation), apperror.KindConflict},
		{"lock timeout", pgError(pgLockNotAvailable), apperror.KindConflict},
		{"statement timeout", pgError(pgQueryCanceled), apperror.KindConflict},
		{"invalid text", pgError(pgInvalidText), apperror.KindValidation},
		{"other postgres error", pgError("40001"), ""},
		{"plain error", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, apperror.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}

	t.Run("existing kind is kept", func(t *testing.T) {
		numbering := apperror.NumberingFailure("progressive number already issued", pgError(pgUniqueViolation))
		assert.Same(t, numbering, Classify(numbering))
	})

	assert.NoError(t, Classify(nil))
	assert.Equal(t, "chk_sectors_available", ConstraintName(pgError(pgCheckViolation)))
}

func TestLockTimeoutStatement(t *testing.T) {
	assert.Equal(t, "", lockTimeoutStatement(0))
	assert.Equal(t, "SET LOCAL lock_timeout = '3000ms'", lockTimeoutStatement(3*time.Second))
	assert.Equal(t, "SET LOCAL lock_timeout = '250ms'", lockTimeoutStatement(250*time.Millisecond))
}

func TestSessionDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		timeout time.Duration
		want    string
	}{
		{"key value", "host=db dbname=ticketing", 15 * time.Second, "host=db dbname=ticketing statement_timeout=15000"},
		{"url", "postgres://u:p@db/ticketing", time.Second, "postgres://u:p@db/ticketing?statement_timeout=1000"},
		{"url with query", "postgresql://db/t?sslmode=disable", time.Second, "postgresql://db/t?sslmode=disable&statement_timeout=1000"},
		{"disabled", "host=db", 0, "host=db"},
		{"already set", "host=db statement_timeout=500", time.Second, "host=db statement_timeout=500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sessionDSN(tt.dsn, tt.timeout))
		})
	}
}
