package cancellation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRefundLocker(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ticketID := uuid.New()
	key := constants.BuildRefundLockKey(ticketID.String())

	locker := &redisRefundLocker{redis: client, ttl: time.Minute, newToken: func() string { return "holder-1" }}

	mock.ExpectSetNX(key, "holder-1", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseLockScript.Hash(), []string{key}, "holder-1").SetVal(int64(1))

	release, ok, err := locker.Acquire(context.Background(), ticketID)
	require.NoError(t, err)
	require.True(t, ok)
	release()

	mock.ExpectSetNX(key, "holder-1", time.Minute).SetVal(false)
	_, ok, err = locker.Acquire(context.Background(), ticketID)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectSetNX(key, "holder-1", time.Minute).SetErr(errors.New("connection refused"))
	_, _, err = locker.Acquire(context.Background(), ticketID)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocalRefundLocker(t *testing.T) {
	locker := NewLocalRefundLocker()
	ticketID := uuid.New()

	release, ok, err := locker.Acquire(context.Background(), ticketID)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = locker.Acquire(context.Background(), ticketID)
	assert.False(t, ok)

	_, ok, _ = locker.Acquire(context.Background(), uuid.New())
	assert.True(t, ok)

	release()
	_, ok, _ = locker.Acquire(context.Background(), ticketID)
	assert.True(t, ok)
}

func TestJobConfigDefaults(t *testing.T) {
	cfg := JobConfigFrom(config.RefundConfig{})
	assert.Equal(t, 5*time.Minute, cfg.RetryInterval)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 50, cfg.BatchSize)

	cfg = JobConfigFrom(config.RefundConfig{RetryInterval: time.Second, MaxAttempts: 2, BatchSize: 7})
	assert.Equal(t, time.Second, cfg.RetryInterval)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, 7, cfg.BatchSize)
}
