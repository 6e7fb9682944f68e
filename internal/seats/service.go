package seats

import (
	"context"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/clock"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/database"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/cache"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Inventory. Reserve and Release join the caller's transaction when ctx
	// carries one.
	Reserve(ctx context.Context, sectorID uuid.UUID, seatID *uuid.UUID) (*Reservation, error)
	// Release returns the inventory held by reservationID, at most once.
	Release(ctx context.Context, sectorID uuid.UUID, seatID *uuid.UUID, reservationID uuid.UUID) error
	PriceFor(ctx context.Context, sectorID uuid.UUID, ticketType TicketType) (Price, error)

	GetSector(ctx context.Context, id uuid.UUID) (*Sector, error)
	ListSectors(ctx context.Context, eventID uuid.UUID) ([]SectorResponse, error)
	GetAvailability(ctx context.Context, sectorID uuid.UUID) (*AvailabilitySnapshot, error)
	ListSeats(ctx context.Context, sectorID uuid.UUID) ([]SeatResponse, error)

	// Admin
	SetSalesSuspended(ctx context.Context, sectorID uuid.UUID, suspended bool) (*SectorResponse, error)
	SetSeatStatus(ctx context.Context, seatID uuid.UUID, status SeatStatus) (*SeatResponse, error)

	// AvailabilityChanged drops cached snapshots and pushes fresh ones to
	// subscribers. Call it after the inventory transaction commits.
	AvailabilityChanged(ctx context.Context, sectorIDs ...uuid.UUID)

	SetCacheService(cacheService cache.Service)
	SetBroadcaster(broadcaster Broadcaster)
}

// Broadcaster pushes availability snapshots to live floor plans
type Broadcaster interface {
	PublishAvailability(ctx context.Context, sectorID string, payload interface{}) error
}

type service struct {
	repo         Repository
	tx           database.Transactor
	clock        clock.Clock
	cacheService cache.Service
	broadcaster  Broadcaster
}

func NewService(repo Repository, tx database.Transactor, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &service{
		repo:         repo,
		tx:           tx,
		clock:        clk,
		cacheService: cache.NewService(nil),
	}
}

// SetCacheService sets the cache service (for dependency injection)
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetBroadcaster(broadcaster Broadcaster) {
	s.broadcaster = broadcaster
}

// INVENTORY

func (s *service) Reserve(ctx context.Context, sectorID uuid.UUID, seatID *uuid.UUID) (*Reservation, error) {
	var reservation *Reservation
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		sector, err := s.repo.GetSector(ctx, sectorID)
		if err != nil {
			return err
		}
		reservation, err = PoolFor(s.repo, sector).Reserve(ctx, seatID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *service) Release(ctx context.Context, sectorID uuid.UUID, seatID *uuid.UUID, reservationID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		sector, err := s.repo.GetSector(ctx, sectorID)
		if err != nil {
			return err
		}
		return PoolFor(s.repo, sector).Release(ctx, Release{
			ReservationID: reservationID,
			SeatID:        seatID,
			ReleasedAt:    s.clock.Now(),
		})
	})
}

func (s *service) PriceFor(ctx context.Context, sectorID uuid.UUID, ticketType TicketType) (Price, error) {
	sector, err := s.repo.GetSector(ctx, sectorID)
	if err != nil {
		return Price{}, err
	}
	return PriceFor(sector, ticketType)
}

// READS

func (s *service) GetSector(ctx context.Context, id uuid.UUID) (*Sector, error) {
	return s.repo.GetSector(ctx, id)
}

func (s *service) ListSectors(ctx context.Context, eventID uuid.UUID) ([]SectorResponse, error) {
	var responses []SectorResponse
	err := s.cacheService.GetOrSet(ctx, constants.BuildEventSectorsKey(eventID.String()), constants.TTL_EVENT_SECTORS,
		func() (interface{}, error) {
			sectors, err := s.repo.GetSectorsByEvent(ctx, eventID)
			if err != nil {
				return nil, err
			}
			out := make([]SectorResponse, len(sectors))
			for i := range sectors {
				out[i] = sectors[i].ToResponse()
			}
			return out, nil
		}, &responses)
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *service) GetAvailability(ctx context.Context, sectorID uuid.UUID) (*AvailabilitySnapshot, error) {
	var snapshot AvailabilitySnapshot
	err := s.cacheService.GetOrSet(ctx, constants.BuildSectorAvailabilityKey(sectorID.String()), constants.TTL_SECTOR_AVAILABILITY,
		func() (interface{}, error) {
			return s.snapshot(ctx, sectorID)
		}, &snapshot)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *service) snapshot(ctx context.Context, sectorID uuid.UUID) (*AvailabilitySnapshot, error) {
	sector, err := s.repo.GetSector(ctx, sectorID)
	if err != nil {
		return nil, err
	}

	snapshot := &AvailabilitySnapshot{
		SectorID:        sector.ID.String(),
		TicketedEventID: sector.TicketedEventID.String(),
		SectorCode:      sector.SectorCode,
		Name:            sector.Name,
		IsNumbered:      sector.IsNumbered,
		Capacity:        sector.Capacity,
		AvailableSeats:  sector.AvailableSeats,
		SalesSuspended:  sector.SalesSuspended,
		GeneratedAt:     s.clock.Now(),
	}
	if sector.IsNumbered {
		if snapshot.SeatCounts, err = s.repo.CountSeatsByStatus(ctx, sectorID); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

func (s *service) ListSeats(ctx context.Context, sectorID uuid.UUID) ([]SeatResponse, error) {
	sector, err := s.repo.GetSector(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if !sector.IsNumbered {
		return []SeatResponse{}, nil
	}

	seats, err := s.repo.GetSeatsBySector(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	responses := make([]SeatResponse, len(seats))
	for i := range seats {
		responses[i] = seats[i].ToResponse()
	}
	return responses, nil
}

// ADMIN

func (s *service) SetSalesSuspended(ctx context.Context, sectorID uuid.UUID, suspended bool) (*SectorResponse, error) {
	if err := s.repo.SetSalesSuspended(ctx, sectorID, suspended); err != nil {
		return nil, err
	}
	sector, err := s.repo.GetSector(ctx, sectorID)
	if err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "Sector sales flag changed", map[string]interface{}{
		"sector_id": sectorID.String(),
		"suspended": suspended,
	})
	s.AvailabilityChanged(ctx, sectorID)

	resp := sector.ToResponse()
	return &resp, nil
}

// SetSeatStatus blocks or unblocks a seat. Sold and reserved seats only move
// through issuance and cancellation.
func (s *service) SetSeatStatus(ctx context.Context, seatID uuid.UUID, status SeatStatus) (*SeatResponse, error) {
	if status != SeatStatusAvailable && status != SeatStatusBlocked {
		return nil, apperror.Validation("seat status can only be set to available or blocked")
	}

	var seat *Seat
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if seat, err = s.repo.GetSeat(ctx, seatID); err != nil {
			return err
		}
		if seat.Status == status {
			return nil
		}

		from := SeatStatusAvailable
		if status == SeatStatusAvailable {
			from = SeatStatusBlocked
		}
		changed, err := s.repo.UpdateSeatStatus(ctx, seatID, from, status)
		if err != nil {
			return err
		}
		if !changed {
			return apperror.Conflict("seat %s is %s", seat.Label(), seat.Status)
		}

		if status == SeatStatusBlocked {
			ok, err := s.repo.WithholdSlot(ctx, seat.SectorID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.Conflict("sector counter is already at zero")
			}
		} else if _, err := s.repo.ReturnSlot(ctx, seat.SectorID); err != nil {
			return err
		}
		seat.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.AvailabilityChanged(ctx, seat.SectorID)
	resp := seat.ToResponse()
	return &resp, nil
}

func (s *service) AvailabilityChanged(ctx context.Context, sectorIDs ...uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(sectorIDs))
	for _, sectorID := range sectorIDs {
		if _, ok := seen[sectorID]; ok {
			continue
		}
		seen[sectorID] = struct{}{}

		if err := s.cacheService.Delete(ctx, constants.BuildSectorAvailabilityKey(sectorID.String())); err != nil {
			logger.GetDefault().WarnContext(ctx, "Failed to invalidate availability cache",
				"sector_id", sectorID.String(), "error", err)
		}

		snapshot, err := s.snapshot(ctx, sectorID)
		if err != nil {
			logger.GetDefault().WarnContext(ctx, "Failed to build availability snapshot",
				"sector_id", sectorID.String(), "error", err)
			continue
		}
		if err := s.cacheService.Delete(ctx, constants.BuildEventSectorsKey(snapshot.TicketedEventID)); err != nil {
			logger.GetDefault().WarnContext(ctx, "Failed to invalidate sector list cache",
				"ticketed_event_id", snapshot.TicketedEventID, "error", err)
		}

		if s.broadcaster == nil {
			continue
		}
		if err := s.broadcaster.PublishAvailability(ctx, snapshot.SectorID, snapshot); err != nil {
			logger.GetDefault().WarnContext(ctx, "Failed to broadcast availability",
				"sector_id", sectorID.String(), "error", err)
		}
	}
}
