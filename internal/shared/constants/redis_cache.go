package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the eventx service
// Pattern: eventx:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // 2 hours - for event details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // 1 hour - for event listings
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // 15 minutes - for upcoming events
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - for event stats
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // 5 minutes - for resale listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "eventx"
)

// ================== EVENTS MODULE ==================

// Event Cache Keys
const (
	// Event listings and searches
	CACHE_KEY_EVENTS_LIST     = CACHE_PREFIX + ":events:list"     // + :page:X:limit:Y:status:Z
	CACHE_KEY_EVENTS_UPCOMING = CACHE_PREFIX + ":events:upcoming" // + :limit:X

	// Individual event details
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
)

// Event Cache TTLs
const (
	TTL_EVENT_LIST     = TTL_SEMI_STATIC_SHORT  // 1 hour
	TTL_EVENT_UPCOMING = TTL_SEMI_STATIC_QUICK  // 15 minutes
	TTL_EVENT_DETAIL   = TTL_SEMI_STATIC_MEDIUM // 2 hours
	TTL_EVENT_STATS    = TTL_DYNAMIC_MEDIUM     // 10 minutes
)

// ================== TICKETS MODULE ==================

// Ticket Cache Keys
const (
	CACHE_KEY_RESALE_LISTINGS = CACHE_PREFIX + ":tickets:resale:open" // open resale listings
)

// Ticket Cache TTLs
const (
	TTL_RESALE_LISTINGS = TTL_DYNAMIC_SHORT // 5 minutes
)

// ================== INVENTORY MODULE ==================

// Inventory counter keys (not cache: authoritative Redis-side counters for
// the Lua allocator; never expire while the event is sellable)
const (
	COUNTER_KEY_AVAILABLE = CACHE_PREFIX + ":inventory:available:" // + event-id
	COUNTER_KEY_TOTAL     = CACHE_PREFIX + ":inventory:total:"     // + event-id
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	// Event-related invalidation patterns
	PATTERN_INVALIDATE_EVENT_ALL    = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_EVENT_DETAIL = CACHE_PREFIX + ":events:*:uuid:" // + event-id + *

	// Ticket-related invalidation patterns
	PATTERN_INVALIDATE_TICKETS_ALL = CACHE_PREFIX + ":tickets:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildEventListKey constructs the cache key for a filtered event listing page
func BuildEventListKey(page, limit int, status string) string {
	if status != "" {
		return CACHE_KEY_EVENTS_LIST + ":page:" + fmt.Sprintf("%d", page) + ":limit:" + fmt.Sprintf("%d", limit) + ":status:" + status
	}
	return CACHE_KEY_EVENTS_LIST + ":page:" + fmt.Sprintf("%d", page) + ":limit:" + fmt.Sprintf("%d", limit)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildAvailableCounterKey(eventID string) string {
	return COUNTER_KEY_AVAILABLE + eventID
}

func BuildTotalCounterKey(eventID string) string {
	return COUNTER_KEY_TOTAL + eventID
}
