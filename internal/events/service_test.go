package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/events"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/testutil/memstore"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTicketedEvent(t *testing.T) {
	store := memstore.New()
	event := store.AddEvent(events.TicketedEvent{Name: "Opera", TotalCapacity: 80, TicketsSold: 20, Revenue: decimal.RequireFromString("400.00")})
	svc := events.NewService(store.Events())

	resp, err := svc.GetTicketedEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opera", resp.Name)
	assert.Equal(t, 20, resp.TicketsSold)

	_, err = svc.GetTicketedEvent(context.Background(), uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestChangeTicketingStatus(t *testing.T) {
	store := memstore.New()
	event := store.AddEvent(events.TicketedEvent{Name: "Opera", TotalCapacity: 80})
	svc := events.NewService(store.Events())
	ctx := context.Background()

	resp, err := svc.ChangeTicketingStatus(ctx, event.ID, events.TicketingStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, events.TicketingStatusSuspended, store.Event(event.ID).TicketingStatus)
	assert.Equal(t, events.TicketingStatusSuspended, resp.TicketingStatus)

	_, err = svc.ChangeTicketingStatus(ctx, event.ID, events.TicketingStatusSuspended)
	require.NoError(t, err)

	_, err = svc.ChangeTicketingStatus(ctx, event.ID, "paused")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.ChangeTicketingStatus(ctx, event.ID, events.TicketingStatusClosed)
	require.NoError(t, err)

	_, err = svc.ChangeTicketingStatus(ctx, event.ID, events.TicketingStatusActive)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestChangeTicketingStatusInvalidatesCache(t *testing.T) {
	store := memstore.New()
	event := store.AddEvent(events.TicketedEvent{Name: "Opera", TotalCapacity: 80})
	client, mock := redismock.NewClientMock()

	svc := events.NewService(store.Events())
	svc.SetCacheService(cache.NewService(client))

	mock.ExpectDel(constants.BuildTicketedEventKey(event.ID.String())).SetErr(errors.New("connection refused"))

	_, err := svc.ChangeTicketingStatus(context.Background(), event.ID, events.TicketingStatusSuspended)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketingStatusTransitions(t *testing.T) {
	assert.True(t, events.TicketingStatusActive.CanTransitionTo(events.TicketingStatusSuspended))
	assert.True(t, events.TicketingStatusSuspended.CanTransitionTo(events.TicketingStatusActive))
	assert.True(t, events.TicketingStatusSuspended.CanTransitionTo(events.TicketingStatusClosed))
	assert.False(t, events.TicketingStatusClosed.CanTransitionTo(events.TicketingStatusActive))
	assert.False(t, events.TicketingStatus("draft").IsValid())
}
