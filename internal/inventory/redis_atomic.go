package inventory

import (
	"context"
	"fmt"
	"strconv"

	"eventx/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AtomicCounterOps keeps a Redis-side mirror of each event's available
// counter and moves it with Lua scripts. It sits in front of the entity
// store as a fast rejection gate under purchase bursts; the store remains
// the authority.
type AtomicCounterOps struct {
	redis *redis.Client
}

// NewAtomicCounterOps creates a new atomic counter handler
func NewAtomicCounterOps(redisClient *redis.Client) *AtomicCounterOps {
	return &AtomicCounterOps{
		redis: redisClient,
	}
}

// Lua script for atomic counter reservation - prevents race conditions
const luaAtomicReserve = `
-- KEYS[1] = available counter key
-- ARGV[1] = quantity

local available_key = KEYS[1]
local quantity = tonumber(ARGV[1])

local available = redis.call("GET", available_key)
if not available then
    return {0, "counter_missing"}
end

available = tonumber(available)
if available < quantity then
    return {0, tostring(available)}
end

local remaining = redis.call("DECRBY", available_key, quantity)
return {1, tostring(remaining)}
`

// Lua script for atomic counter release, capped at the event total
const luaAtomicRelease = `
-- KEYS[1] = available counter key
-- KEYS[2] = total counter key
-- ARGV[1] = quantity

local available_key = KEYS[1]
local total_key = KEYS[2]
local quantity = tonumber(ARGV[1])

local available = redis.call("GET", available_key)
local total = redis.call("GET", total_key)
if not available or not total then
    return {0, "counter_missing"}
end

available = tonumber(available)
total = tonumber(total)

local target = available + quantity
if target > total then
    redis.call("SET", available_key, total)
    return {2, tostring(total)}
end

redis.call("SET", available_key, target)
return {1, tostring(target)}
`

// Reserve atomically decrements the event's available counter by quantity.
// Returns ErrInsufficientInventory when fewer than quantity remain and
// ErrEventNotFound when the counters were never primed.
func (a *AtomicCounterOps) Reserve(ctx context.Context, eventID uuid.UUID, quantity int) (int, error) {
	if a.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	keys := []string{constants.BuildAvailableCounterKey(eventID.String())}
	result, err := a.redis.EvalSha(ctx, luaAtomicReserve, keys, quantity).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = a.redis.Eval(ctx, luaAtomicReserve, keys, quantity).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to execute atomic reserve: %w", err)
		}
	}

	flag, detail, err := parseCounterResult(result)
	if err != nil {
		return 0, err
	}

	if flag == 0 {
		if detail == "counter_missing" {
			return 0, fmt.Errorf("counters not primed for event %s: %w", eventID, ErrEventNotFound)
		}
		return 0, fmt.Errorf("event %s has %s tickets available, requested %d: %w",
			eventID, detail, quantity, ErrInsufficientInventory)
	}

	remaining, _ := strconv.Atoi(detail)
	return remaining, nil
}

// Release atomically increments the event's available counter by quantity,
// clamping at the event total. A clamped release returns ErrConsistency
// alongside the clamped value.
func (a *AtomicCounterOps) Release(ctx context.Context, eventID uuid.UUID, quantity int) (int, error) {
	if a.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	keys := []string{
		constants.BuildAvailableCounterKey(eventID.String()),
		constants.BuildTotalCounterKey(eventID.String()),
	}
	result, err := a.redis.EvalSha(ctx, luaAtomicRelease, keys, quantity).Result()
	if err != nil {
		result, err = a.redis.Eval(ctx, luaAtomicRelease, keys, quantity).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to execute atomic release: %w", err)
		}
	}

	flag, detail, err := parseCounterResult(result)
	if err != nil {
		return 0, err
	}

	switch flag {
	case 0:
		return 0, fmt.Errorf("counters not primed for event %s: %w", eventID, ErrEventNotFound)
	case 2:
		clamped, _ := strconv.Atoi(detail)
		return clamped, fmt.Errorf("release of %d tickets for event %s clamped at total: %w",
			quantity, eventID, ErrConsistency)
	default:
		updated, _ := strconv.Atoi(detail)
		return updated, nil
	}
}

// Prime seeds both counters for an event. Called when an event is created
// and on startup reconciliation against the store.
func (a *AtomicCounterOps) Prime(ctx context.Context, eventID uuid.UUID, available, total int) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	pipe := a.redis.TxPipeline()
	pipe.Set(ctx, constants.BuildAvailableCounterKey(eventID.String()), available, 0)
	pipe.Set(ctx, constants.BuildTotalCounterKey(eventID.String()), total, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prime counters for event %s: %w", eventID, err)
	}
	return nil
}

// Forget drops both counters, used when an event is cancelled or completed.
func (a *AtomicCounterOps) Forget(ctx context.Context, eventID uuid.UUID) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	err := a.redis.Del(ctx,
		constants.BuildAvailableCounterKey(eventID.String()),
		constants.BuildTotalCounterKey(eventID.String()),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to drop counters for event %s: %w", eventID, err)
	}
	return nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (a *AtomicCounterOps) PreloadScripts(ctx context.Context) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if _, err := a.redis.ScriptLoad(ctx, luaAtomicReserve).Result(); err != nil {
		return fmt.Errorf("failed to load reserve script: %w", err)
	}
	if _, err := a.redis.ScriptLoad(ctx, luaAtomicRelease).Result(); err != nil {
		return fmt.Errorf("failed to load release script: %w", err)
	}
	return nil
}

func parseCounterResult(result interface{}) (int64, string, error) {
	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return 0, "", fmt.Errorf("unexpected result format from Lua script")
	}

	flag, ok := resultArray[0].(int64)
	if !ok {
		return 0, "", fmt.Errorf("invalid flag in Lua script result")
	}

	detail, ok := resultArray[1].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid detail in Lua script result")
	}

	return flag, detail, nil
}
