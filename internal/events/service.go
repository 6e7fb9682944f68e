package events

import (
	"context"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/cache"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	GetTicketedEvent(ctx context.Context, id uuid.UUID) (*TicketedEventResponse, error)
	ChangeTicketingStatus(ctx context.Context, id uuid.UUID, status TicketingStatus) (*TicketedEventResponse, error)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo, cacheService: cache.NewService(nil)}
}

// SetCacheService sets the cache service (for dependency injection)
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetTicketedEvent(ctx context.Context, id uuid.UUID) (*TicketedEventResponse, error) {
	var resp TicketedEventResponse
	err := s.cacheService.GetOrSet(ctx, constants.BuildTicketedEventKey(id.String()), constants.TTL_TICKETED_EVENT,
		func() (interface{}, error) {
			event, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return event.ToResponse(), nil
		}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangeTicketingStatus suspends, resumes or closes sales. Closing is final.
func (s *service) ChangeTicketingStatus(ctx context.Context, id uuid.UUID, status TicketingStatus) (*TicketedEventResponse, error) {
	if !status.IsValid() {
		return nil, apperror.Validation("unknown ticketing status %q", status)
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.TicketingStatus == status {
		resp := event.ToResponse()
		return &resp, nil
	}
	if !event.TicketingStatus.CanTransitionTo(status) {
		return nil, apperror.Conflict("cannot move ticketing from %s to %s", event.TicketingStatus, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, event.TicketingStatus, status); err != nil {
		return nil, err
	}

	logger.GetDefault().InfoWithContext(ctx, "Ticketing status changed", map[string]interface{}{
		"ticketed_event_id": id.String(),
		"from":              event.TicketingStatus,
		"to":                status,
	})

	if err := s.cacheService.Delete(ctx, constants.BuildTicketedEventKey(id.String())); err != nil {
		logger.GetDefault().WarnContext(ctx, "Failed to invalidate ticketed event cache", "error", err)
	}

	event.TicketingStatus = status
	resp := event.ToResponse()
	return &resp, nil
}
