package constants

import (
	"fmt"
	"time"
)

// Redis keys and TTLs for the ticketing service.
// Pattern: ticketing:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "ticketing"
)

// Highly Dynamic (Micro TTL: real-time sensitive)
const (
	TTL_REALTIME_MEDIUM = 1 * time.Minute  // 1 minute - for sector listings
	TTL_REALTIME_SHORT  = 30 * time.Second // 30 seconds - for live availability
)

// ================== SEATS MODULE ==================

const (
	CACHE_KEY_SECTOR_AVAILABILITY = CACHE_PREFIX + ":seats:availability:sector:" // + sector-id
	CACHE_KEY_EVENT_SECTORS       = CACHE_PREFIX + ":seats:sectors:event:"       // + event-id
)

const (
	TTL_SECTOR_AVAILABILITY = TTL_REALTIME_SHORT
	TTL_EVENT_SECTORS       = TTL_REALTIME_MEDIUM
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_TICKETED_EVENT = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
)

const (
	TTL_TICKETED_EVENT = TTL_REALTIME_SHORT
)

// ================== CANCELLATION MODULE ==================

const (
	CACHE_KEY_CANCELLATION_REASONS = CACHE_PREFIX + ":cancellation:reasons:active"
	LOCK_KEY_REFUND                = CACHE_PREFIX + ":cancellation:refund_lock:" // + ticket-id
)

const (
	TTL_CANCELLATION_REASONS = 6 * time.Hour
)

// ================== RATE LIMIT ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// ================== HELPER FUNCTIONS ==================

func BuildSectorAvailabilityKey(sectorID string) string {
	return CACHE_KEY_SECTOR_AVAILABILITY + sectorID
}

func BuildEventSectorsKey(eventID string) string {
	return CACHE_KEY_EVENT_SECTORS + eventID
}

func BuildTicketedEventKey(eventID string) string {
	return CACHE_KEY_TICKETED_EVENT + eventID
}

func BuildRefundLockKey(ticketID string) string {
	return LOCK_KEY_REFUND + ticketID
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return fmt.Sprintf("%s:%s:%s", RATE_LIMIT_PREFIX, clientIP, limitType)
}
