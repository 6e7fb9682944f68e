package cancellation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefundLocker serializes refund attempts per ticket across instances
type RefundLocker interface {
	// Acquire returns ok=false when another attempt holds the lock.
	Acquire(ctx context.Context, ticketID uuid.UUID) (release func(), ok bool, err error)
}

// Lua script for compare-and-delete: only the holder's token frees the lock
const luaReleaseLock = `
-- KEYS[1] = lock key
-- ARGV[1] = holder token

if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseLockScript = redis.NewScript(luaReleaseLock)

type redisRefundLocker struct {
	redis    *redis.Client
	ttl      time.Duration
	newToken func() string
}

// NewRedisRefundLocker creates a lock whose TTL must outlive the gateway
// timeout, otherwise a slow call can overlap a retry.
func NewRedisRefundLocker(client *redis.Client, ttl time.Duration) RefundLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisRefundLocker{redis: client, ttl: ttl, newToken: uuid.NewString}
}

func (l *redisRefundLocker) Acquire(ctx context.Context, ticketID uuid.UUID) (func(), bool, error) {
	key := constants.BuildRefundLockKey(ticketID.String())
	token := l.newToken()

	acquired, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire refund lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		// release must run even if the request context is done
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		releaseLockScript.Run(releaseCtx, l.redis, []string{key}, token)
	}
	return release, true, nil
}

// localRefundLocker is the single-instance fallback when Redis is absent
type localRefundLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewLocalRefundLocker() RefundLocker {
	return &localRefundLocker{held: make(map[uuid.UUID]struct{})}
}

func (l *localRefundLocker) Acquire(_ context.Context, ticketID uuid.UUID) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[ticketID]; busy {
		return nil, false, nil
	}
	l.held[ticketID] = struct{}{}

	return func() {
		l.mu.Lock()
		delete(l.held, ticketID)
		l.mu.Unlock()
	}, true, nil
}
