package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cheeksnpeeps/amenity-scheduler/pkg/telemetry"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RedisSlotCache caches computed availability slots per amenity and range.
// Invalidation bumps a per-amenity version key; stale entries become
// unreachable and age out by TTL, so no key scans are needed.
type RedisSlotCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisSlotCache creates a new RedisSlotCache
func NewRedisSlotCache(client *goredis.Client, ttl time.Duration) *RedisSlotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisSlotCache{client: client, ttl: ttl}
}

func versionKey(amenityID string) string {
	return fmt.Sprintf("amenity:%s:calver", amenityID)
}

func (c *RedisSlotCache) slotKey(ctx context.Context, amenityID string, start, end time.Time) (string, error) {
	version, err := c.client.Get(ctx, versionKey(amenityID)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			version = 0
		} else {
			return "", err
		}
	}
	return fmt.Sprintf("amenity:%s:slots:v%d:%d:%d", amenityID, version, start.Unix(), end.Unix()), nil
}

// Get returns the cached slots for the range; the bool reports a cache hit
func (c *RedisSlotCache) Get(ctx context.Context, amenityID string, start, end time.Time) ([]time.Time, bool) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.slot_cache.get")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", amenityID))

	key, err := c.slotKey(ctx, amenityID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Bool("cache_hit", false))
		span.SetStatus(codes.Ok, "")
		return nil, false
	}

	var slots []time.Time
	if err := json.Unmarshal(data, &slots); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false
	}

	span.SetAttributes(attribute.Bool("cache_hit", true), attribute.Int("count", len(slots)))
	span.SetStatus(codes.Ok, "")
	return slots, true
}

// Set stores computed slots for the range. Failures are swallowed; the cache
// is an optimization, never a source of truth.
func (c *RedisSlotCache) Set(ctx context.Context, amenityID string, start, end time.Time, slots []time.Time) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.slot_cache.set")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", amenityID), attribute.Int("count", len(slots)))

	key, err := c.slotKey(ctx, amenityID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	data, err := json.Marshal(slots)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "")
}

// Invalidate drops all cached ranges for the amenity by bumping its version
func (c *RedisSlotCache) Invalidate(ctx context.Context, amenityID string) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.slot_cache.invalidate")
	defer span.End()

	span.SetAttributes(attribute.String("amenity_id", amenityID))

	if err := c.client.Incr(ctx, versionKey(amenityID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "")
}
