package migrations

import (
	"fmt"

	"gorm.io/gorm"
)

// constraint statements are idempotent so Migrate can run on every boot
var constraintStatements = []struct {
	name string
	sql  string
}{
	{
		// at most one live ticket per seat
		name: "idx_tickets_live_seat",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_live_seat
			ON tickets (seat_id) WHERE seat_id IS NOT NULL AND status IN ('valid', 'used')`,
	},
	{
		name: "chk_sectors_available_within_capacity",
		sql: `DO $$ BEGIN
			ALTER TABLE sectors ADD CONSTRAINT chk_sectors_available_within_capacity
				CHECK (available_seats BETWEEN 0 AND capacity);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	},
	{
		name: "chk_ticketed_events_sold_within_capacity",
		sql: `DO $$ BEGIN
			ALTER TABLE ticketed_events ADD CONSTRAINT chk_ticketed_events_sold_within_capacity
				CHECK (tickets_sold BETWEEN 0 AND total_capacity);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	},
	{
		name: "chk_transactions_refund_within_total",
		sql: `DO $$ BEGIN
			ALTER TABLE transactions ADD CONSTRAINT chk_transactions_refund_within_total
				CHECK (refunded_amount BETWEEN 0 AND total_amount);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	},
	{
		name: "idx_tickets_pending_refund",
		sql: `CREATE INDEX IF NOT EXISTS idx_tickets_pending_refund
			ON tickets (cancelled_at) WHERE status = 'cancelled' AND refund_requested AND refunded_at IS NULL`,
	},
	{
		name: "idx_seats_sector_available",
		sql: `CREATE INDEX IF NOT EXISTS idx_seats_sector_available
			ON seats (sector_id, row, position) WHERE status = 'available'`,
	},
}

// MigrateConstraints adds the database constraints that back concurrency control
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("failed to apply %s: %w", stmt.name, err)
		}
	}
	return nil
}
