package seats

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Sector reads
	GetSector(ctx context.Context, id uuid.UUID) (*Sector, error)
	GetSectorsByEvent(ctx context.Context, eventID uuid.UUID) ([]Sector, error)
	SetSalesSuspended(ctx context.Context, id uuid.UUID, suspended bool) error

	// Sector counter. Both are guarded so the counter stays in [0, capacity].
	TakeSlot(ctx context.Context, sectorID uuid.UUID) (bool, error)
	ReturnSlot(ctx context.Context, sectorID uuid.UUID) (bool, error)
	// WithholdSlot is TakeSlot for admin blocking; it ignores the sales flag.
	WithholdSlot(ctx context.Context, sectorID uuid.UUID) (bool, error)

	// Seat reads
	GetSeat(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsBySector(ctx context.Context, sectorID uuid.UUID) ([]Seat, error)
	CountSeatsByStatus(ctx context.Context, sectorID uuid.UUID) (map[SeatStatus]int, error)

	// Seat claims
	ClaimSeat(ctx context.Context, sectorID, seatID uuid.UUID) (bool, error)
	ClaimAnySeat(ctx context.Context, sectorID uuid.UUID) (*Seat, error)
	ReleaseSeat(ctx context.Context, sectorID, seatID uuid.UUID) (bool, error)
	UpdateSeatStatus(ctx context.Context, seatID uuid.UUID, from, to SeatStatus) (bool, error)

	// RecordRelease reports false when the reservation was already released.
	RecordRelease(ctx context.Context, release Release) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// SECTORS

func (r *repository) GetSector(ctx context.Context, id uuid.UUID) (*Sector, error) {
	var sector Sector
	err := database.Conn(ctx, r.db).First(&sector, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sector %s not found", id)
		}
		return nil, fmt.Errorf("failed to get sector: %w", err)
	}
	return &sector, nil
}

func (r *repository) GetSectorsByEvent(ctx context.Context, eventID uuid.UUID) ([]Sector, error) {
	var sectors []Sector
	err := database.Conn(ctx, r.db).
		Where("ticketed_event_id = ?", eventID).
		Order("sector_code ASC").
		Find(&sectors).Error
	return sectors, err
}

func (r *repository) SetSalesSuspended(ctx context.Context, id uuid.UUID, suspended bool) error {
	result := database.Conn(ctx, r.db).
		Model(&Sector{}).
		Where("id = ?", id).
		Update("sales_suspended", suspended)
	if result.Error != nil {
		return fmt.Errorf("failed to update sector sales flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("sector %s not found", id)
	}
	return nil
}

func (r *repository) TakeSlot(ctx context.Context, sectorID uuid.UUID) (bool, error) {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE sectors
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = ? AND available_seats > 0 AND sales_suspended = false`,
		sectorID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement sector availability: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ReturnSlot(ctx context.Context, sectorID uuid.UUID) (bool, error) {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE sectors
		SET available_seats = available_seats + 1, updated_at = NOW()
		WHERE id = ? AND available_seats < capacity`,
		sectorID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to increment sector availability: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) WithholdSlot(ctx context.Context, sectorID uuid.UUID) (bool, error) {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE sectors
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = ? AND available_seats > 0`,
		sectorID)
	if result.Error != nil {
		return false, fmt.Errorf("failed to withhold sector slot: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RecordRelease(ctx context.Context, release Release) (bool, error) {
	result := database.Conn(ctx, r.db).Exec(`
		INSERT INTO inventory_releases (reservation_id, sector_id, seat_id, released_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (reservation_id) DO NOTHING`,
		release.ReservationID, release.SectorID, release.SeatID, release.ReleasedAt)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record inventory release: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SEATS

func (r *repository) GetSeat(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := database.Conn(ctx, r.db).First(&seat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("seat %s not found", id)
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	return &seat, nil
}

func (r *repository) GetSeatsBySector(ctx context.Context, sectorID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := database.Conn(ctx, r.db).
		Where("sector_id = ?", sectorID).
		Order("row ASC, position ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CountSeatsByStatus(ctx context.Context, sectorID uuid.UUID) (map[SeatStatus]int, error) {
	var rows []struct {
		Status SeatStatus
		Count  int
	}
	err := database.Conn(ctx, r.db).
		Model(&Seat{}).
		Select("status, COUNT(*) AS count").
		Where("sector_id = ?", sectorID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count seats: %w", err)
	}

	counts := make(map[SeatStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ClaimSeat marks one specific seat sold if it is still available.
func (r *repository) ClaimSeat(ctx context.Context, sectorID, seatID uuid.UUID) (bool, error) {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE seats
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND sector_id = ? AND status = ?`,
		SeatStatusSold, seatID, sectorID, SeatStatusAvailable)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim seat: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ClaimAnySeat sells the first available seat by row and position. Rows
// locked by a concurrent claim are skipped rather than waited on. Returns nil
// when nothing is left.
func (r *repository) ClaimAnySeat(ctx context.Context, sectorID uuid.UUID) (*Seat, error) {
	var claimed []Seat
	err := database.Conn(ctx, r.db).Raw(`
		UPDATE seats
		SET status = ?, updated_at = NOW()
		WHERE id = (
			SELECT id FROM seats
			WHERE sector_id = ? AND status = ?
			ORDER BY row ASC, position ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		SeatStatusSold, sectorID, SeatStatusAvailable).Scan(&claimed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to claim seat: %w", err)
	}
	if len(claimed) == 0 {
		return nil, nil
	}
	return &claimed[0], nil
}

func (r *repository) ReleaseSeat(ctx context.Context, sectorID, seatID uuid.UUID) (bool, error) {
	result := database.Conn(ctx, r.db).Exec(`
		UPDATE seats
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND sector_id = ? AND status IN (?, ?)`,
		SeatStatusAvailable, seatID, sectorID, SeatStatusSold, SeatStatusReserved)
	if result.Error != nil {
		return false, fmt.Errorf("failed to release seat: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) UpdateSeatStatus(ctx context.Context, seatID uuid.UUID, from, to SeatStatus) (bool, error) {
	result := database.Conn(ctx, r.db).
		Model(&Seat{}).
		Where("id = ? AND status = ?", seatID, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update seat status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
