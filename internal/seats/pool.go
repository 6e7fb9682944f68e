package seats

import (
	"context"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/google/uuid"
)

// AvailabilityPool is the reserve/release contract shared by numbered and
// general-admission sectors. Both must run inside a transaction: a numbered
// reservation touches the seat row and the sector counter.
type AvailabilityPool interface {
	Reserve(ctx context.Context, seatID *uuid.UUID) (*Reservation, error)
	Release(ctx context.Context, release Release) error
}

// PoolFor picks the pool variant for sector
func PoolFor(repo Repository, sector *Sector) AvailabilityPool {
	if sector.IsNumbered {
		return &seatPool{repo: repo, sector: sector}
	}
	return &slotPool{repo: repo, sector: sector}
}

type seatPool struct {
	repo   Repository
	sector *Sector
}

// Reserve claims the requested seat, or the first free one by row and
// position when seatID is nil.
func (p *seatPool) Reserve(ctx context.Context, seatID *uuid.UUID) (*Reservation, error) {
	if p.sector.SalesSuspended {
		return nil, apperror.InventoryExhausted("sales are suspended for sector %s", p.sector.SectorCode)
	}

	var seat *Seat
	if seatID == nil {
		claimed, err := p.repo.ClaimAnySeat(ctx, p.sector.ID)
		if err != nil {
			return nil, err
		}
		if claimed == nil {
			return nil, apperror.InventoryExhausted("no seats available in sector %s", p.sector.SectorCode)
		}
		seat = claimed
	} else {
		ok, err := p.repo.ClaimSeat(ctx, p.sector.ID, *seatID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.InventoryExhausted("seat %s is not available", seatID)
		}
		if seat, err = p.repo.GetSeat(ctx, *seatID); err != nil {
			return nil, err
		}
	}

	taken, err := p.repo.TakeSlot(ctx, p.sector.ID)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, apperror.InventoryExhausted("sector %s is sold out", p.sector.SectorCode)
	}

	id := seat.ID
	return &Reservation{
		SectorID:   p.sector.ID,
		SectorCode: p.sector.SectorCode,
		SeatID:     &id,
		Row:        seat.Row,
		SeatNumber: seat.SeatNumber,
	}, nil
}

// Release frees a sold seat. Releasing a seat that is already free, or
// releasing the same reservation twice, is a no-op and leaves the sector
// counter alone.
func (p *seatPool) Release(ctx context.Context, release Release) error {
	seatID := release.SeatID
	if seatID == nil {
		return apperror.Validation("sector %s is numbered; a seat is required", p.sector.SectorCode)
	}

	first, err := recordRelease(ctx, p.repo, p.sector, release)
	if err != nil || !first {
		return err
	}

	released, err := p.repo.ReleaseSeat(ctx, p.sector.ID, *seatID)
	if err != nil {
		return err
	}
	if !released {
		logger.GetDefault().WarnContext(ctx, "Seat release ignored: seat not held",
			"sector_id", p.sector.ID.String(), "seat_id", seatID.String())
		return nil
	}

	if _, err := p.repo.ReturnSlot(ctx, p.sector.ID); err != nil {
		return err
	}
	return nil
}

type slotPool struct {
	repo   Repository
	sector *Sector
}

func (p *slotPool) Reserve(ctx context.Context, seatID *uuid.UUID) (*Reservation, error) {
	if seatID != nil {
		return nil, apperror.Validation("sector %s is not numbered; a seat cannot be chosen", p.sector.SectorCode)
	}

	taken, err := p.repo.TakeSlot(ctx, p.sector.ID)
	if err != nil {
		return nil, err
	}
	if !taken {
		if p.sector.SalesSuspended {
			return nil, apperror.InventoryExhausted("sales are suspended for sector %s", p.sector.SectorCode)
		}
		return nil, apperror.InventoryExhausted("sector %s is sold out", p.sector.SectorCode)
	}

	return &Reservation{
		SectorID:   p.sector.ID,
		SectorCode: p.sector.SectorCode,
	}, nil
}

// Release returns the reservation's slot once. The counter never climbs past
// capacity.
func (p *slotPool) Release(ctx context.Context, release Release) error {
	first, err := recordRelease(ctx, p.repo, p.sector, release)
	if err != nil || !first {
		return err
	}

	returned, err := p.repo.ReturnSlot(ctx, p.sector.ID)
	if err != nil {
		return err
	}
	if !returned {
		logger.GetDefault().WarnContext(ctx, "Slot release ignored: sector already at capacity",
			"sector_id", p.sector.ID.String())
	}
	return nil
}

func recordRelease(ctx context.Context, repo Repository, sector *Sector, release Release) (bool, error) {
	if release.ReservationID == uuid.Nil {
		return false, apperror.Validation("a reservation id is required to release inventory")
	}
	release.SectorID = sector.ID

	first, err := repo.RecordRelease(ctx, release)
	if err != nil {
		return false, err
	}
	if !first {
		logger.GetDefault().WarnContext(ctx, "Release ignored: reservation already released",
			"sector_id", sector.ID.String(), "reservation_id", release.ReservationID.String())
	}
	return first, nil
}
