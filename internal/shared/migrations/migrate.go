package migrations

import (
	"context"
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/cancellation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/fiscal"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/tickets"

	"gorm.io/gorm"
)

// Migrate creates the schema, the constraints AutoMigrate cannot express and
// the causale vocabulary.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	err := db.AutoMigrate(
		&events.TicketedEvent{},
		&seats.Sector{},
		&seats.Seat{},
		&seats.Release{},
		&fiscal.Counter{},
		&tickets.Transaction{},
		&tickets.Ticket{},
		&cancellation.Reason{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	if err := MigrateConstraints(db); err != nil {
		return err
	}

	return cancellation.NewRepository(db).EnsureDefaults(context.Background(), cancellation.DefaultReasons())
}
