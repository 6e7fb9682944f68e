package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/cancellation"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/seats"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/middleware"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/migrations"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("🌱 Starting Ticketing Database Seeder...")

	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := migrations.Migrate(db.PostgreSQL); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	seeder := &Seeder{db: db, cfg: cfg}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates the ticketing tables. Causali are kept.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"inventory_releases",
		"tickets",
		"transactions",
		"fiscal_counters",
		"seats",
		"sectors",
		"ticketed_events",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	if err := cancellation.NewRepository(s.db.PostgreSQL).EnsureDefaults(ctx, cancellation.DefaultReasons()); err != nil {
		return fmt.Errorf("failed to seed causali: %w", err)
	}
	fmt.Println("  📋 Causali di annullamento ensured")

	eventID, err := s.SeedTicketedEvent()
	if err != nil {
		return fmt.Errorf("failed to seed ticketed event: %w", err)
	}

	if err := s.SeedSectors(eventID); err != nil {
		return fmt.Errorf("failed to seed sectors: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	// Report the fiscal device as ready
	if err := s.db.Redis.Set(ctx, s.cfg.Fiscal.DeviceReadyKey, "1", 0).Err(); err != nil {
		log.Printf("Warning: Failed to mark fiscal device ready: %v", err)
	}

	return s.PrintStaffTokens()
}

func (s *Seeder) SeedTicketedEvent() (uuid.UUID, error) {
	fmt.Println("  🎫 Seeding ticketed event...")

	saleStart := time.Now().Add(-time.Hour)
	saleEnd := time.Now().AddDate(0, 1, 0)
	event := events.TicketedEvent{
		ID:                 uuid.New(),
		BaseEventID:        uuid.New(),
		Name:               "Concerto di Primavera",
		TotalCapacity:      260,
		TicketingStatus:    events.TicketingStatusActive,
		SaleStartDate:      &saleStart,
		SaleEndDate:        &saleEnd,
		MaxTicketsPerUser:  10,
		RequiresNominative: false,
		AllowsChangeName:   true,
	}
	if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
		return uuid.Nil, err
	}

	fmt.Printf("    ✅ Created ticketed event: %s (%s)\n", event.Name, event.ID)
	return event.ID, nil
}

// SeedSectors creates a numbered platea (10 rows of 6 seats) and a
// general admission parterre.
func (s *Seeder) SeedSectors(eventID uuid.UUID) error {
	fmt.Println("  🪑 Seeding sectors and seats...")

	platea := seats.Sector{
		ID:              uuid.New(),
		TicketedEventID: eventID,
		Name:            "Platea",
		SectorCode:      "PL",
		Capacity:        60,
		AvailableSeats:  60,
		PriceIntero:     decimal.RequireFromString("45.00"),
		PriceRidotto:    decimal.NewNullDecimal(decimal.RequireFromString("35.00")),
		Prevendita:      decimal.RequireFromString("4.50"),
		IsNumbered:      true,
	}
	parterre := seats.Sector{
		ID:              uuid.New(),
		TicketedEventID: eventID,
		Name:            "Parterre",
		SectorCode:      "PT",
		Capacity:        200,
		AvailableSeats:  200,
		PriceIntero:     decimal.RequireFromString("25.00"),
		Prevendita:      decimal.RequireFromString("2.50"),
	}

	for _, sector := range []*seats.Sector{&platea, &parterre} {
		if err := s.db.PostgreSQL.Create(sector).Error; err != nil {
			return fmt.Errorf("failed to create sector %s: %w", sector.SectorCode, err)
		}
		fmt.Printf("    ✅ Created sector: %s (%s, capacity %d)\n", sector.Name, sector.ID, sector.Capacity)
	}

	var rows []seats.Seat
	for r := 0; r < 10; r++ {
		row := string(rune('A' + r))
		for n := 1; n <= 6; n++ {
			rows = append(rows, seats.Seat{
				ID:           uuid.New(),
				SectorID:     platea.ID,
				Row:          row,
				SeatNumber:   strconv.Itoa(n),
				Position:     n,
				Status:       seats.SeatStatusAvailable,
				IsAccessible: r == 0 && n <= 2,
			})
		}
	}
	if err := s.db.PostgreSQL.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("failed to create seats: %w", err)
	}
	fmt.Printf("    ✅ Created %d seats in %s\n", len(rows), platea.Name)
	return nil
}

// PrintStaffTokens mints one access token per staff role for manual testing
func (s *Seeder) PrintStaffTokens() error {
	fmt.Println("\n🔑 Staff access tokens (valid 24h):")
	for _, role := range []string{middleware.RoleAdmin, middleware.RoleBoxOffice, middleware.RoleCheckin} {
		claims := jwt.MapClaims{
			"user_id": uuid.NewString(),
			"role":    role,
			"type":    "access",
			"exp":     time.Now().Add(24 * time.Hour).Unix(),
			"iat":     time.Now().Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.Secret))
		if err != nil {
			return fmt.Errorf("failed to sign %s token: %w", role, err)
		}
		fmt.Printf("  %-10s %s\n", role, token)
	}
	return nil
}
