package fiscal

import (
	"context"
	"errors"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/apperror"
	"github.com/evenfouryou/Event-Four-You-2026-sub000/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// DeviceMonitor reports whether the fiscal printer/smart-card reader is ready.
// The device poller keeps a heartbeat key at "1" while the device is usable.
type DeviceMonitor interface {
	Ready(ctx context.Context) bool
	EnsureReady(ctx context.Context) error
}

type redisDeviceMonitor struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func NewRedisDeviceMonitor(client *redis.Client, key string, timeout time.Duration) DeviceMonitor {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &redisDeviceMonitor{client: client, key: key, timeout: timeout}
}

func (m *redisDeviceMonitor) Ready(ctx context.Context) bool {
	if m.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	val, err := m.client.Get(ctx, m.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.GetDefault().WarnContext(ctx, "Fiscal device heartbeat unreadable", "key", m.key, "error", err)
		}
		return false
	}
	return val == "1"
}

func (m *redisDeviceMonitor) EnsureReady(ctx context.Context) error {
	if !m.Ready(ctx) {
		return apperror.New(apperror.KindDeviceNotReady, "fiscal device is not ready")
	}
	return nil
}

// StaticDeviceMonitor always reports the same readiness. Used when the device
// check is disabled and in tests.
type StaticDeviceMonitor bool

func (s StaticDeviceMonitor) Ready(context.Context) bool {
	return bool(s)
}

func (s StaticDeviceMonitor) EnsureReady(context.Context) error {
	if !s {
		return apperror.New(apperror.KindDeviceNotReady, "fiscal device is not ready")
	}
	return nil
}
