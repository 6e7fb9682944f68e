package cancellation

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface defines the contract for causale data operations
type Repository interface {
	ListActive(ctx context.Context) ([]Reason, error)
	GetByCode(ctx context.Context, code string) (*Reason, error)
	EnsureDefaults(ctx context.Context, reasons []Reason) error
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new cancellation repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context) ([]Reason, error) {
	var reasons []Reason
	err := database.Conn(ctx, r.db).
		Where("active = ?", true).
		Order("sort_order ASC, code ASC").
		Find(&reasons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellation reasons: %w", err)
	}
	return reasons, nil
}

// GetByCode returns nil, nil for an unknown code
func (r *repository) GetByCode(ctx context.Context, code string) (*Reason, error) {
	var reason Reason
	err := database.Conn(ctx, r.db).First(&reason, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cancellation reason: %w", err)
	}
	return &reason, nil
}

// EnsureDefaults inserts missing codes and leaves edited ones alone
func (r *repository) EnsureDefaults(ctx context.Context, reasons []Reason) error {
	if len(reasons) == 0 {
		return nil
	}
	err := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&reasons).Error
	if err != nil {
		return fmt.Errorf("failed to seed cancellation reasons: %w", err)
	}
	return nil
}
